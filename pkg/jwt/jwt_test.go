package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateToken(&models.User{ID: 7, Email: "a@b.co", Role: models.RoleAdmin})
	require.NoError(t, err)

	id, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: 7, Email: "a@b.co", Role: models.RoleAdmin}, id)
	assert.True(t, id.IsAdmin())
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewManager("secret", time.Minute)
	token, err := m.GenerateToken(&models.User{ID: 1, Email: "a@b.co", Role: models.RoleUser})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other := NewManager("other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour).GenerateToken(&models.User{ID: 1})
	assert.Error(t, err)
}
