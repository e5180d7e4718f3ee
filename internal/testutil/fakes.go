package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
)

// AddPackage stores a package directly, bypassing any service rules.
func (m *Memory) AddPackage(name, price string, days int, active bool) models.Package {
	pkg := models.Package{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		DurationDays: days,
		IsActive:     active,
	}
	if err := m.Packages().Create(context.Background(), &pkg); err != nil {
		panic(err)
	}
	return pkg
}

// AddAddon stores an addon; days may be nil to follow the package duration.
func (m *Memory) AddAddon(name, price string, days *int, active bool) models.Addon {
	addon := models.Addon{
		Name:         name,
		PriceType:    models.PriceTypeOneTime,
		BasePrice:    decimal.RequireFromString(price),
		DurationDays: days,
		IsActive:     active,
	}
	if err := m.Addons().Create(context.Background(), &addon); err != nil {
		panic(err)
	}
	return addon
}

func (m *Memory) AddUser(email string, role models.Role) models.User {
	user := models.User{FullName: "Test " + email, Email: email, Password: "x", Role: role}
	if err := m.Users().Create(context.Background(), &user); err != nil {
		panic(err)
	}
	return user
}

// Gateway records payment intents instead of calling a provider.
type Gateway struct {
	mu        sync.Mutex
	Created   []decimal.Decimal
	Cancelled []string
	Err       error
	OnCreate  func(ctx context.Context)
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, _ map[string]string) (string, error) {
	if g.OnCreate != nil {
		g.OnCreate(ctx)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	g.Created = append(g.Created, amount)
	return fmt.Sprintf("pi_test_%d", len(g.Created)), nil
}

func (g *Gateway) CancelPaymentIntent(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Cancelled = append(g.Cancelled, intentID)
	return nil
}

// Receipts delivers every sent receipt on Sent.
type Receipts struct {
	Sent chan *models.PackagePurchase
	Err  error
}

func NewReceipts() *Receipts {
	return &Receipts{Sent: make(chan *models.PackagePurchase, 8)}
}

func (r *Receipts) SendPurchaseReceipt(_ context.Context, _ *models.User, purchase *models.PackagePurchase) error {
	r.Sent <- purchase
	return r.Err
}

// Idempotency is a map-backed dedup store. FailComplete makes that many
// Complete calls fail before one succeeds.
type Idempotency struct {
	mu   sync.Mutex
	keys map[string]string

	FailComplete  int
	CompleteCalls int
}

func NewIdempotency() *Idempotency {
	return &Idempotency{keys: map[string]string{}}
}

func (s *Idempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.keys[key]; ok {
		return v, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *Idempotency) Complete(_ context.Context, key, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompleteCalls++
	if s.FailComplete > 0 {
		s.FailComplete--
		return errors.New("idempotency store unavailable")
	}
	s.keys[key] = result
	return nil
}

func (s *Idempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Result returns the stored value for key; "" while it is only reserved.
func (s *Idempotency) Result(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key]
}

// Has reports whether key is reserved or completed.
func (s *Idempotency) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// Tokens issues predictable tokens.
type Tokens struct{}

func (Tokens) GenerateToken(user *models.User) (string, error) {
	return fmt.Sprintf("token-%d-%s", user.ID, user.Role), nil
}

// ValidateToken accepts tokens produced by GenerateToken.
func (Tokens) ValidateToken(token string) (models.Identity, error) {
	parts := strings.SplitN(token, "-", 3)
	if len(parts) != 3 || parts[0] != "token" {
		return models.Identity{}, errors.New("malformed token")
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{UserID: uint(id), Role: models.Role(parts[2])}, nil
}
