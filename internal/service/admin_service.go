package service

import (
	"context"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/formtype"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
)

// AdminService answers the dashboard's cross-user queries.
type AdminService struct {
	purchases      PackagePurchaseStore
	addonPurchases AddonPurchaseStore
	subs           FormSubmissionStore
	registry       *formtype.Registry
}

func NewAdminService(purchases PackagePurchaseStore, addonPurchases AddonPurchaseStore, subs FormSubmissionStore, registry *formtype.Registry) *AdminService {
	return &AdminService{
		purchases:      purchases,
		addonPurchases: addonPurchases,
		subs:           subs,
		registry:       registry,
	}
}

func (s *AdminService) ListAllPurchases(ctx context.Context, filter models.PurchaseFilter) ([]models.PackagePurchase, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.ValidationFields("invalid filter", map[string]string{"status": "unknown status"})
	}
	purchases, total, err := s.purchases.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	batchIDs := make([]string, 0, len(purchases))
	index := make(map[string]int, len(purchases))
	for i := range purchases {
		purchases[i].Addons = []models.AddonPurchase{}
		batchIDs = append(batchIDs, purchases[i].PurchaseBatchID)
		index[purchases[i].PurchaseBatchID] = i
	}
	addons, err := s.addonPurchases.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range addons {
		if i, ok := index[a.PurchaseBatchID]; ok {
			purchases[i].Addons = append(purchases[i].Addons, a)
		}
	}
	if purchases == nil {
		purchases = []models.PackagePurchase{}
	}
	return purchases, total, nil
}

func (s *AdminService) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]models.FormSubmission, int64, error) {
	if filter.FormType != "" {
		if _, ok := s.registry.Get(filter.FormType); !ok {
			return nil, 0, apperrors.ValidationFields("invalid filter", map[string]string{"form_type": "unknown form type"})
		}
	}
	subs, total, err := s.subs.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if subs == nil {
		subs = []models.FormSubmission{}
	}
	return subs, total, nil
}

// Summary counts purchases by status and books revenue for active entries.
// Addons bought with a package are already inside that package's total.
func (s *AdminService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	pkgCounts, err := s.purchases.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	addonCounts, err := s.addonPurchases.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	pkgRevenue, err := s.purchases.ActiveRevenue(ctx)
	if err != nil {
		return nil, err
	}
	addonRevenue, err := s.addonPurchases.StandaloneActiveRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.subs.StatsByFormType(ctx)
	if err != nil {
		return nil, err
	}

	// every registered form appears, even with no submissions yet
	byType := make(map[string]models.FormTypeStats, len(stats))
	for _, st := range stats {
		byType[st.FormType] = st
	}
	submissions := make([]models.FormTypeStats, 0, len(byType))
	for _, def := range s.registry.All() {
		st, ok := byType[def.Name]
		if !ok {
			st = models.FormTypeStats{FormType: def.Name}
		}
		submissions = append(submissions, st)
	}

	return &models.DashboardSummary{
		PackagePurchases: nonNilCounts(pkgCounts),
		AddonPurchases:   nonNilCounts(addonCounts),
		ActiveRevenue:    decimalSum(pkgRevenue, addonRevenue),
		Submissions:      submissions,
	}, nil
}

func nonNilCounts(c []models.StatusCount) []models.StatusCount {
	if c == nil {
		return []models.StatusCount{}
	}
	return c
}

func decimalSum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total.Round(2)
}
