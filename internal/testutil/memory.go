// Package testutil provides in-memory stores that behave like the gorm
// repositories, including transaction rollback, for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type txKey struct{}

type tables struct {
	users          map[uint]models.User
	packages       map[uint]models.Package
	addons         map[uint]models.Addon
	purchases      map[uint]models.PackagePurchase
	addonPurchases map[uint]models.AddonPurchase
	subs           map[uint]models.FormSubmission
	nextID         uint
}

func (t *tables) clone() *tables {
	c := &tables{
		users:          make(map[uint]models.User, len(t.users)),
		packages:       make(map[uint]models.Package, len(t.packages)),
		addons:         make(map[uint]models.Addon, len(t.addons)),
		purchases:      make(map[uint]models.PackagePurchase, len(t.purchases)),
		addonPurchases: make(map[uint]models.AddonPurchase, len(t.addonPurchases)),
		subs:           make(map[uint]models.FormSubmission, len(t.subs)),
		nextID:         t.nextID,
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.packages {
		c.packages[k] = v
	}
	for k, v := range t.addons {
		c.addons[k] = v
	}
	for k, v := range t.purchases {
		c.purchases[k] = v
	}
	for k, v := range t.addonPurchases {
		c.addonPurchases[k] = v
	}
	for k, v := range t.subs {
		v.FormData = cloneJSON(v.FormData)
		c.subs[k] = v
	}
	return c
}

// Memory is a process-local database. Transactions run one at a time, which
// stands in for the row locks the real store takes.
type Memory struct {
	txMu sync.Mutex
	mu   sync.Mutex
	t    *tables

	failures map[string]error
	// Now stamps created_at/updated_at.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		t: &tables{
			users:          map[uint]models.User{},
			packages:       map[uint]models.Package{},
			addons:         map[uint]models.Addon{},
			purchases:      map[uint]models.PackagePurchase{},
			addonPurchases: map[uint]models.AddonPurchase{},
			subs:           map[uint]models.FormSubmission{},
		},
		failures: map[string]error{},
		Now:      time.Now,
	}
}

// FailOn makes the named operation (e.g. "AddonPurchase.Create") return err
// until cleared with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Memory) fail(op string) error {
	return m.failures[op]
}

func (m *Memory) id() uint {
	m.t.nextID++
	return m.t.nextID
}

// Transaction restores every table when fn fails. A nested call joins the
// outer transaction.
func (m *Memory) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.t.clone()
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.mu.Lock()
		m.t = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// InTransaction reports whether ctx was handed out by Memory.Transaction.
func InTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

func (m *Memory) Users() *Users                       { return &Users{m} }
func (m *Memory) Packages() *Packages                 { return &Packages{m} }
func (m *Memory) Addons() *Addons                     { return &Addons{m} }
func (m *Memory) PackagePurchases() *PackagePurchases { return &PackagePurchases{m} }
func (m *Memory) AddonPurchases() *AddonPurchases     { return &AddonPurchases{m} }
func (m *Memory) Submissions() *Submissions           { return &Submissions{m} }

// Counts reports table sizes, handy for all-or-nothing assertions.
func (m *Memory) Counts() (packagePurchases, addonPurchases int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.t.purchases), len(m.t.addonPurchases)
}

func conflict() error {
	return apperrors.Conflict("Record already exists")
}

func cloneJSON(in datatypes.JSONMap) datatypes.JSONMap {
	if in == nil {
		return nil
	}
	out := make(datatypes.JSONMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func page(total, p, size int) (start, end int) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if p <= 0 {
		p = 1
	}
	start = (p - 1) * size
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

type Users struct{ m *Memory }

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.t.users {
		if u.Email == user.Email {
			return conflict()
		}
	}
	user.ID = s.m.id()
	user.CreatedAt, user.UpdatedAt = s.m.Now(), s.m.Now()
	s.m.t.users[user.ID] = *user
	return nil
}

func (s *Users) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.t.users[id]
	if !ok {
		return nil, apperrors.NotFound("User")
	}
	return &u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("User")
}

func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

type Packages struct{ m *Memory }

func (s *Packages) GetByID(_ context.Context, id uint) (*models.Package, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.t.packages[id]
	if !ok {
		return nil, apperrors.NotFound("Package")
	}
	return &p, nil
}

func (s *Packages) List(_ context.Context, includeInactive bool) ([]models.Package, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Package{}
	for _, p := range s.m.t.packages {
		if p.IsActive || includeInactive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

func (s *Packages) Create(_ context.Context, pkg *models.Package) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.t.packages {
		if p.Name == pkg.Name {
			return conflict()
		}
	}
	pkg.ID = s.m.id()
	pkg.CreatedAt, pkg.UpdatedAt = s.m.Now(), s.m.Now()
	s.m.t.packages[pkg.ID] = *pkg
	return nil
}

func (s *Packages) Update(_ context.Context, pkg *models.Package) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	pkg.UpdatedAt = s.m.Now()
	s.m.t.packages[pkg.ID] = *pkg
	return nil
}

type Addons struct{ m *Memory }

func (s *Addons) GetByID(_ context.Context, id uint) (*models.Addon, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.t.addons[id]
	if !ok {
		return nil, apperrors.NotFound("Addon")
	}
	return &a, nil
}

func (s *Addons) GetByIDs(_ context.Context, ids []uint) ([]models.Addon, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Addon{}
	for _, id := range ids {
		if a, ok := s.m.t.addons[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Addons) List(_ context.Context, includeInactive bool) ([]models.Addon, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Addon{}
	for _, a := range s.m.t.addons {
		if a.IsActive || includeInactive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BasePrice.LessThan(out[j].BasePrice) })
	return out, nil
}

func (s *Addons) Create(_ context.Context, addon *models.Addon) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.t.addons {
		if a.Name == addon.Name {
			return conflict()
		}
	}
	addon.ID = s.m.id()
	addon.CreatedAt, addon.UpdatedAt = s.m.Now(), s.m.Now()
	s.m.t.addons[addon.ID] = *addon
	return nil
}

func (s *Addons) Update(_ context.Context, addon *models.Addon) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	addon.UpdatedAt = s.m.Now()
	s.m.t.addons[addon.ID] = *addon
	return nil
}

type PackagePurchases struct{ m *Memory }

func (s *PackagePurchases) withPackage(p models.PackagePurchase) models.PackagePurchase {
	if pkg, ok := s.m.t.packages[p.PackageID]; ok {
		p.Package = &pkg
	}
	p.Addons = nil
	return p
}

func (s *PackagePurchases) Create(_ context.Context, purchase *models.PackagePurchase) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("PackagePurchase.Create"); err != nil {
		return err
	}
	purchase.ID = s.m.id()
	purchase.CreatedAt, purchase.UpdatedAt = s.m.Now(), s.m.Now()
	stored := *purchase
	stored.Package, stored.Addons = nil, nil
	s.m.t.purchases[purchase.ID] = stored
	return nil
}

func (s *PackagePurchases) GetByID(_ context.Context, id uint) (*models.PackagePurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.t.purchases[id]
	if !ok {
		return nil, apperrors.NotFound("Purchase")
	}
	p = s.withPackage(p)
	return &p, nil
}

func (s *PackagePurchases) GetByIDForUpdate(_ context.Context, id uint) (*models.PackagePurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.t.purchases[id]
	if !ok {
		return nil, apperrors.NotFound("Purchase")
	}
	return &p, nil
}

func (s *PackagePurchases) GetByBatchID(_ context.Context, batchID string) (*models.PackagePurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.t.purchases {
		if p.PurchaseBatchID == batchID {
			p = s.withPackage(p)
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("Purchase")
}

func (s *PackagePurchases) Update(_ context.Context, purchase *models.PackagePurchase) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("PackagePurchase.Update"); err != nil {
		return err
	}
	purchase.UpdatedAt = s.m.Now()
	stored := *purchase
	stored.Package, stored.Addons = nil, nil
	s.m.t.purchases[purchase.ID] = stored
	return nil
}

func (s *PackagePurchases) sorted(match func(models.PackagePurchase) bool) []models.PackagePurchase {
	out := []models.PackagePurchase{}
	for _, p := range s.m.t.purchases {
		if match(p) {
			out = append(out, s.withPackage(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchaseDate.Equal(out[j].PurchaseDate) {
			return out[i].PurchaseDate.After(out[j].PurchaseDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *PackagePurchases) ListByUser(_ context.Context, userID uint) ([]models.PackagePurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.sorted(func(p models.PackagePurchase) bool { return p.UserID == userID }), nil
}

func (s *PackagePurchases) List(_ context.Context, filter models.PurchaseFilter) ([]models.PackagePurchase, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := s.sorted(func(p models.PackagePurchase) bool {
		return (filter.Status == "" || p.Status == filter.Status) &&
			(filter.UserID == 0 || p.UserID == filter.UserID)
	})
	start, end := page(len(all), filter.Page, filter.PageSize)
	return all[start:end], int64(len(all)), nil
}

func (s *PackagePurchases) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for id, p := range s.m.t.purchases {
		if p.Status == models.PurchaseStatusActive && !p.ExpirationDate.After(now) {
			p.Status = models.PurchaseStatusExpired
			s.m.t.purchases[id] = p
			n++
		}
	}
	return n, nil
}

func (s *PackagePurchases) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	counts := map[models.PurchaseStatus]int64{}
	for _, p := range s.m.t.purchases {
		counts[p.Status]++
	}
	return statusCounts(counts), nil
}

func (s *PackagePurchases) ActiveRevenue(_ context.Context) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	total := decimal.Zero
	for _, p := range s.m.t.purchases {
		if p.Status == models.PurchaseStatusActive {
			total = total.Add(p.TotalAmount)
		}
	}
	return total, nil
}

type AddonPurchases struct{ m *Memory }

func (s *AddonPurchases) withAddon(p models.AddonPurchase) models.AddonPurchase {
	if a, ok := s.m.t.addons[p.AddonID]; ok {
		p.Addon = &a
	}
	return p
}

func (s *AddonPurchases) Create(_ context.Context, purchase *models.AddonPurchase) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("AddonPurchase.Create"); err != nil {
		return err
	}
	purchase.ID = s.m.id()
	purchase.CreatedAt, purchase.UpdatedAt = s.m.Now(), s.m.Now()
	stored := *purchase
	stored.Addon = nil
	s.m.t.addonPurchases[purchase.ID] = stored
	return nil
}

func (s *AddonPurchases) GetByIDForUpdate(_ context.Context, id uint) (*models.AddonPurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.t.addonPurchases[id]
	if !ok {
		return nil, apperrors.NotFound("Addon purchase")
	}
	return &p, nil
}

func (s *AddonPurchases) Update(_ context.Context, purchase *models.AddonPurchase) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	purchase.UpdatedAt = s.m.Now()
	stored := *purchase
	stored.Addon = nil
	s.m.t.addonPurchases[purchase.ID] = stored
	return nil
}

func (s *AddonPurchases) ListByUser(_ context.Context, userID uint) ([]models.AddonPurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.AddonPurchase{}
	for _, p := range s.m.t.addonPurchases {
		if p.UserID == userID {
			out = append(out, s.withAddon(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchaseDate.Equal(out[j].PurchaseDate) {
			return out[i].PurchaseDate.After(out[j].PurchaseDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *AddonPurchases) ListByBatchIDs(_ context.Context, batchIDs []string) ([]models.AddonPurchase, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	want := make(map[string]bool, len(batchIDs))
	for _, id := range batchIDs {
		want[id] = true
	}
	out := []models.AddonPurchase{}
	for _, p := range s.m.t.addonPurchases {
		if want[p.PurchaseBatchID] {
			out = append(out, s.withAddon(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AddonPurchases) CancelActiveInBatch(_ context.Context, batchID string, at time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for id, p := range s.m.t.addonPurchases {
		if p.PurchaseBatchID == batchID && p.Status == models.PurchaseStatusActive {
			p.Status = models.PurchaseStatusCancelled
			cancelled := at
			p.CancelledAt = &cancelled
			s.m.t.addonPurchases[id] = p
			n++
		}
	}
	return n, nil
}

func (s *AddonPurchases) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for id, p := range s.m.t.addonPurchases {
		if p.Status == models.PurchaseStatusActive && !p.ExpirationDate.After(now) {
			p.Status = models.PurchaseStatusExpired
			s.m.t.addonPurchases[id] = p
			n++
		}
	}
	return n, nil
}

func (s *AddonPurchases) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	counts := map[models.PurchaseStatus]int64{}
	for _, p := range s.m.t.addonPurchases {
		counts[p.Status]++
	}
	return statusCounts(counts), nil
}

func (s *AddonPurchases) StandaloneActiveRevenue(_ context.Context) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	batches := map[string]bool{}
	for _, p := range s.m.t.purchases {
		batches[p.PurchaseBatchID] = true
	}
	total := decimal.Zero
	for _, p := range s.m.t.addonPurchases {
		if p.Status == models.PurchaseStatusActive && !batches[p.PurchaseBatchID] {
			total = total.Add(p.AmountPaid)
		}
	}
	return total, nil
}

func statusCounts(counts map[models.PurchaseStatus]int64) []models.StatusCount {
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

type Submissions struct{ m *Memory }

func (s *Submissions) find(userID uint, formType string) (*models.FormSubmission, error) {
	for _, sub := range s.m.t.subs {
		if sub.UserID == userID && sub.FormType == formType {
			sub.FormData = cloneJSON(sub.FormData)
			return &sub, nil
		}
	}
	return nil, apperrors.NotFound("Form submission")
}

func (s *Submissions) Find(_ context.Context, userID uint, formType string) (*models.FormSubmission, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.find(userID, formType)
}

func (s *Submissions) FindForUpdate(_ context.Context, userID uint, formType string) (*models.FormSubmission, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.find(userID, formType)
}

func (s *Submissions) Create(_ context.Context, sub *models.FormSubmission) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("FormSubmission.Create"); err != nil {
		return err
	}
	if _, err := s.find(sub.UserID, sub.FormType); err == nil {
		return conflict()
	}
	sub.ID = s.m.id()
	sub.CreatedAt, sub.UpdatedAt = s.m.Now(), s.m.Now()
	stored := *sub
	stored.FormData = cloneJSON(sub.FormData)
	s.m.t.subs[sub.ID] = stored
	return nil
}

func (s *Submissions) Update(_ context.Context, sub *models.FormSubmission) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sub.UpdatedAt = s.m.Now()
	stored := *sub
	stored.FormData = cloneJSON(sub.FormData)
	s.m.t.subs[sub.ID] = stored
	return nil
}

func (s *Submissions) List(_ context.Context, filter models.SubmissionFilter) ([]models.FormSubmission, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := []models.FormSubmission{}
	for _, sub := range s.m.t.subs {
		if filter.FormType == "" || sub.FormType == filter.FormType {
			sub.FormData = cloneJSON(sub.FormData)
			all = append(all, sub)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start, end := page(len(all), filter.Page, filter.PageSize)
	return all[start:end], int64(len(all)), nil
}

func (s *Submissions) StatsByFormType(_ context.Context) ([]models.FormTypeStats, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	byType := map[string]*models.FormTypeStats{}
	for _, sub := range s.m.t.subs {
		st, ok := byType[sub.FormType]
		if !ok {
			st = &models.FormTypeStats{FormType: sub.FormType}
			byType[sub.FormType] = st
		}
		st.Started++
		if sub.IsCompleted {
			st.Completed++
		}
	}
	out := make([]models.FormTypeStats, 0, len(byType))
	for _, st := range byType {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FormType < out[j].FormType })
	return out, nil
}
