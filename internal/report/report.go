// Package report shapes stored rows into the labeled response objects the
// clients consume. Everything here is pure: no I/O and no hidden state.
//
// Optional values are pointers without omitempty so they render as null, and
// collections are never nil so they render as [].
package report

import (
	"time"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Money renders an amount with exactly two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Success(message string, data interface{}) models.Response {
	return models.SuccessResponse(data, message)
}

func Failure(message string, data interface{}) models.Response {
	return models.ErrorResponse(message, data)
}

type PurchaseInfo struct {
	PurchaseID       uint                  `json:"purchase_id"`
	PurchaseBatchID  string                `json:"purchase_batch_id"`
	UserID           uint                  `json:"user_id"`
	PurchaseDate     time.Time             `json:"purchase_date"`
	ExpirationDate   time.Time             `json:"expiration_date"`
	Status           models.PurchaseStatus `json:"status"`
	TotalAmount      string                `json:"total_amount"`
	PaymentReference *string               `json:"payment_reference"`
	CancelledAt      *time.Time            `json:"cancelled_at"`
}

type PackageDetails struct {
	PackageID    uint   `json:"package_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	DurationDays int    `json:"duration_days"`
	IsActive     bool   `json:"is_active"`
}

type AddonPurchaseInfo struct {
	AddonPurchaseID  uint                  `json:"addon_purchase_id"`
	PurchaseBatchID  string                `json:"purchase_batch_id"`
	UserID           uint                  `json:"user_id"`
	PurchaseDate     time.Time             `json:"purchase_date"`
	ExpirationDate   time.Time             `json:"expiration_date"`
	Status           models.PurchaseStatus `json:"status"`
	AmountPaid       string                `json:"amount_paid"`
	PaymentReference *string               `json:"payment_reference"`
	CancelledAt      *time.Time            `json:"cancelled_at"`
}

type AddonDetails struct {
	AddonID      uint             `json:"addon_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	PriceType    models.PriceType `json:"price_type"`
	BasePrice    string           `json:"base_price"`
	DurationDays *int             `json:"duration_days"`
	IsActive     bool             `json:"is_active"`
}

type AddonView struct {
	AddonPurchaseInfo AddonPurchaseInfo `json:"addon_purchase_info"`
	AddonDetails      *AddonDetails     `json:"addon_details"`
}

type PurchaseView struct {
	PurchaseInfo   PurchaseInfo    `json:"purchase_info"`
	PackageDetails *PackageDetails `json:"package_details"`
	Addons         []AddonView     `json:"addons"`
}

type UserPurchasesView struct {
	Purchases        []PurchaseView `json:"purchases"`
	StandaloneAddons []AddonView    `json:"standalone_addons"`
}

type SubmissionInfo struct {
	SubmissionID  uint       `json:"submission_id"`
	UserID        uint       `json:"user_id"`
	FormType      string     `json:"form_type"`
	SchemaVersion int        `json:"schema_version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type ProgressView struct {
	CurrentStep        int     `json:"current_step"`
	TotalSteps         int     `json:"total_steps"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsCompleted        bool    `json:"is_completed"`
}

type SubmissionView struct {
	SubmissionInfo SubmissionInfo         `json:"submission_info"`
	Progress       ProgressView           `json:"progress"`
	FormData       map[string]interface{} `json:"form_data"`
}

// Page wraps one page of a listing.
type Page struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// NewPage echoes the effective paging, which is what the store applied.
func NewPage(items interface{}, total int64, page, pageSize int) Page {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return Page{Items: items, Total: total, Page: page, PageSize: pageSize}
}

func Package(p *models.Package) *PackageDetails {
	if p == nil {
		return nil
	}
	return &PackageDetails{
		PackageID:    p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        Money(p.Price),
		DurationDays: p.DurationDays,
		IsActive:     p.IsActive,
	}
}

func Packages(pkgs []models.Package) []PackageDetails {
	out := make([]PackageDetails, 0, len(pkgs))
	for i := range pkgs {
		out = append(out, *Package(&pkgs[i]))
	}
	return out
}

func Addon(a *models.Addon) *AddonDetails {
	if a == nil {
		return nil
	}
	return &AddonDetails{
		AddonID:      a.ID,
		Name:         a.Name,
		Description:  a.Description,
		PriceType:    a.PriceType,
		BasePrice:    Money(a.BasePrice),
		DurationDays: a.DurationDays,
		IsActive:     a.IsActive,
	}
}

func Addons(addons []models.Addon) []AddonDetails {
	out := make([]AddonDetails, 0, len(addons))
	for i := range addons {
		out = append(out, *Addon(&addons[i]))
	}
	return out
}

func AddonPurchase(p *models.AddonPurchase) AddonView {
	return AddonView{
		AddonPurchaseInfo: AddonPurchaseInfo{
			AddonPurchaseID:  p.ID,
			PurchaseBatchID:  p.PurchaseBatchID,
			UserID:           p.UserID,
			PurchaseDate:     p.PurchaseDate,
			ExpirationDate:   p.ExpirationDate,
			Status:           p.Status,
			AmountPaid:       Money(p.AmountPaid),
			PaymentReference: p.PaymentReference,
			CancelledAt:      p.CancelledAt,
		},
		AddonDetails: Addon(p.Addon),
	}
}

func AddonPurchases(ps []models.AddonPurchase) []AddonView {
	out := make([]AddonView, 0, len(ps))
	for i := range ps {
		out = append(out, AddonPurchase(&ps[i]))
	}
	return out
}

func Purchase(p *models.PackagePurchase) PurchaseView {
	return PurchaseView{
		PurchaseInfo: PurchaseInfo{
			PurchaseID:       p.ID,
			PurchaseBatchID:  p.PurchaseBatchID,
			UserID:           p.UserID,
			PurchaseDate:     p.PurchaseDate,
			ExpirationDate:   p.ExpirationDate,
			Status:           p.Status,
			TotalAmount:      Money(p.TotalAmount),
			PaymentReference: p.PaymentReference,
			CancelledAt:      p.CancelledAt,
		},
		PackageDetails: Package(p.Package),
		Addons:         AddonPurchases(p.Addons),
	}
}

func Purchases(ps []models.PackagePurchase) []PurchaseView {
	out := make([]PurchaseView, 0, len(ps))
	for i := range ps {
		out = append(out, Purchase(&ps[i]))
	}
	return out
}

func UserPurchases(up *models.UserPurchases) UserPurchasesView {
	return UserPurchasesView{
		Purchases:        Purchases(up.Packages),
		StandaloneAddons: AddonPurchases(up.Standalone),
	}
}

func Progress(p *models.FormProgress) ProgressView {
	return ProgressView{
		CurrentStep:        p.CurrentStep,
		TotalSteps:         p.TotalSteps,
		ProgressPercentage: p.ProgressPercentage,
		IsCompleted:        p.IsCompleted,
	}
}

// Submission needs the form's step count, which is not stored per row.
func Submission(sub *models.FormSubmission, totalSteps int) SubmissionView {
	data := map[string]interface{}{}
	for k, v := range sub.FormData {
		data[k] = v
	}
	return SubmissionView{
		SubmissionInfo: SubmissionInfo{
			SubmissionID:  sub.ID,
			UserID:        sub.UserID,
			FormType:      sub.FormType,
			SchemaVersion: sub.SchemaVersion,
			CreatedAt:     sub.CreatedAt,
			UpdatedAt:     sub.UpdatedAt,
			CompletedAt:   sub.CompletedAt,
		},
		Progress: ProgressView{
			CurrentStep:        sub.CurrentStep,
			TotalSteps:         totalSteps,
			ProgressPercentage: sub.ProgressPercentage,
			IsCompleted:        sub.IsCompleted,
		},
		FormData: data,
	}
}

// Submissions looks up each row's step count through steps; unknown form
// types report zero.
func Submissions(subs []models.FormSubmission, steps func(formType string) int) []SubmissionView {
	out := make([]SubmissionView, 0, len(subs))
	for i := range subs {
		out = append(out, Submission(&subs[i], steps(subs[i].FormType)))
	}
	return out
}

type SummaryView struct {
	PackagePurchases []models.StatusCount   `json:"package_purchases"`
	AddonPurchases   []models.StatusCount   `json:"addon_purchases"`
	ActiveRevenue    string                 `json:"active_revenue"`
	Submissions      []models.FormTypeStats `json:"submissions"`
}

func Summary(s *models.DashboardSummary) SummaryView {
	return SummaryView{
		PackagePurchases: s.PackagePurchases,
		AddonPurchases:   s.AddonPurchases,
		ActiveRevenue:    Money(s.ActiveRevenue),
		Submissions:      s.Submissions,
	}
}
