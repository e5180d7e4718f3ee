package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLJoinsWithoutDoubleSlash(t *testing.T) {
	s := &CloudflareStorage{publicURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/brand-assets/1/logo.png", s.PublicURL("/brand-assets/1/logo.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", s.PublicURL("a.png"))
}
