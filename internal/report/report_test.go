package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func toMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestPurchaseWithoutAddonsRendersEmptyList(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &models.PackagePurchase{
		ID:              5,
		PurchaseBatchID: "b-1",
		UserID:          9,
		PurchaseDate:    day,
		ExpirationDate:  day.AddDate(0, 0, 30),
		Status:          models.PurchaseStatusActive,
		TotalAmount:     decimal.NewFromInt(999),
		Package:         &models.Package{ID: 2, Name: "Professional", Price: decimal.NewFromInt(999), DurationDays: 30, IsActive: true},
	}

	got := toMap(t, Success("Purchases retrieved", Purchase(p)))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "Purchases retrieved", got["message"])

	data := got["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["addons"])

	info := data["purchase_info"].(map[string]interface{})
	assert.Equal(t, "999.00", info["total_amount"])
	assert.Equal(t, "2026-03-31T00:00:00Z", info["expiration_date"])
	assert.Contains(t, info, "payment_reference")
	assert.Nil(t, info["payment_reference"])
	assert.Contains(t, info, "cancelled_at")
	assert.Nil(t, info["cancelled_at"])

	pkg := data["package_details"].(map[string]interface{})
	assert.Equal(t, "Professional", pkg["name"])
	assert.Equal(t, "999.00", pkg["price"])
}

func TestMissingReferencesRenderAsNull(t *testing.T) {
	addon := AddonPurchase(&models.AddonPurchase{ID: 3, AmountPaid: decimal.RequireFromString("19.5")})
	got := toMap(t, addon)

	assert.Contains(t, got, "addon_details")
	assert.Nil(t, got["addon_details"])
	info := got["addon_purchase_info"].(map[string]interface{})
	assert.Equal(t, "19.50", info["amount_paid"])

	view := toMap(t, Purchase(&models.PackagePurchase{}))
	assert.Nil(t, view["package_details"])
}

func TestUserPurchasesKeepsStandaloneSeparate(t *testing.T) {
	days := 7
	up := &models.UserPurchases{
		Packages: []models.PackagePurchase{{
			ID:     1,
			Addons: []models.AddonPurchase{{ID: 10, Addon: &models.Addon{ID: 4, Name: "Logo Revision"}}},
		}},
		Standalone: []models.AddonPurchase{{ID: 11, Addon: &models.Addon{ID: 5, Name: "Support", DurationDays: &days}}},
	}

	view := UserPurchases(up)
	require.Len(t, view.Purchases, 1)
	require.Len(t, view.Purchases[0].Addons, 1)
	assert.Equal(t, "Logo Revision", view.Purchases[0].Addons[0].AddonDetails.Name)
	require.Len(t, view.StandaloneAddons, 1)
	assert.Equal(t, 7, *view.StandaloneAddons[0].AddonDetails.DurationDays)

	empty := toMap(t, UserPurchases(&models.UserPurchases{}))
	assert.Equal(t, []interface{}{}, empty["purchases"])
	assert.Equal(t, []interface{}{}, empty["standalone_addons"])
}

func TestSubmissionView(t *testing.T) {
	sub := &models.FormSubmission{
		ID:                 8,
		UserID:             2,
		FormType:           "brand_kit",
		SchemaVersion:      1,
		CurrentStep:        1,
		ProgressPercentage: 8.33,
		FormData:           datatypes.JSONMap{"business_name": "Acme", "website": nil},
	}

	got := toMap(t, Submission(sub, 12))
	progress := got["progress"].(map[string]interface{})
	assert.Equal(t, 8.33, progress["progress_percentage"])
	assert.Equal(t, float64(12), progress["total_steps"])
	assert.Equal(t, false, progress["is_completed"])

	info := got["submission_info"].(map[string]interface{})
	assert.Nil(t, info["completed_at"])
	assert.Equal(t, "brand_kit", info["form_type"])

	data := got["form_data"].(map[string]interface{})
	assert.Equal(t, "Acme", data["business_name"])
	assert.Contains(t, data, "website")

	blank := toMap(t, Submission(&models.FormSubmission{}, 6))
	assert.Equal(t, map[string]interface{}{}, blank["form_data"])
}

func TestSubmissionsUsesStepLookup(t *testing.T) {
	subs := []models.FormSubmission{{FormType: "brand_kit"}, {FormType: "product_service"}}
	steps := map[string]int{"brand_kit": 12, "product_service": 6}

	views := Submissions(subs, func(ft string) int { return steps[ft] })
	require.Len(t, views, 2)
	assert.Equal(t, 12, views[0].Progress.TotalSteps)
	assert.Equal(t, 6, views[1].Progress.TotalSteps)
}

func TestFailureAndPage(t *testing.T) {
	got := toMap(t, Failure("Purchase not found", nil))
	assert.Equal(t, false, got["success"])
	assert.Contains(t, got, "data")
	assert.Nil(t, got["data"])

	page := NewPage([]PurchaseView{}, 0, 0, 500)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestProgress(t *testing.T) {
	view := Progress(&models.FormProgress{FormType: "brand_kit", CurrentStep: 12, TotalSteps: 12, ProgressPercentage: 100, IsCompleted: true})
	assert.Equal(t, ProgressView{CurrentStep: 12, TotalSteps: 12, ProgressPercentage: 100, IsCompleted: true}, view)
}

func TestSummaryRendersRevenueAsMoney(t *testing.T) {
	got := toMap(t, Summary(&models.DashboardSummary{
		PackagePurchases: []models.StatusCount{{Status: models.PurchaseStatusActive, Count: 1}},
		AddonPurchases:   []models.StatusCount{},
		ActiveRevenue:    decimal.RequireFromString("1249.5"),
		Submissions:      []models.FormTypeStats{},
	}))
	assert.Equal(t, "1249.50", got["active_revenue"])
	assert.Equal(t, []interface{}{}, got["addon_purchases"])
}
