package service

import (
	"context"
	"io"
	"time"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Transactor runs fn in one database transaction; stores called with the
// ctx passed to fn take part in it.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type FormSubmissionStore interface {
	Find(ctx context.Context, userID uint, formType string) (*models.FormSubmission, error)
	FindForUpdate(ctx context.Context, userID uint, formType string) (*models.FormSubmission, error)
	Create(ctx context.Context, sub *models.FormSubmission) error
	Update(ctx context.Context, sub *models.FormSubmission) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.FormSubmission, int64, error)
	StatsByFormType(ctx context.Context) ([]models.FormTypeStats, error)
}

type PackageStore interface {
	GetByID(ctx context.Context, id uint) (*models.Package, error)
	List(ctx context.Context, includeInactive bool) ([]models.Package, error)
	Create(ctx context.Context, pkg *models.Package) error
	Update(ctx context.Context, pkg *models.Package) error
}

type AddonStore interface {
	GetByID(ctx context.Context, id uint) (*models.Addon, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Addon, error)
	List(ctx context.Context, includeInactive bool) ([]models.Addon, error)
	Create(ctx context.Context, addon *models.Addon) error
	Update(ctx context.Context, addon *models.Addon) error
}

type PackagePurchaseStore interface {
	Create(ctx context.Context, purchase *models.PackagePurchase) error
	GetByID(ctx context.Context, id uint) (*models.PackagePurchase, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.PackagePurchase, error)
	GetByBatchID(ctx context.Context, batchID string) (*models.PackagePurchase, error)
	Update(ctx context.Context, purchase *models.PackagePurchase) error
	ListByUser(ctx context.Context, userID uint) ([]models.PackagePurchase, error)
	List(ctx context.Context, filter models.PurchaseFilter) ([]models.PackagePurchase, int64, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	ActiveRevenue(ctx context.Context) (decimal.Decimal, error)
}

type AddonPurchaseStore interface {
	Create(ctx context.Context, purchase *models.AddonPurchase) error
	GetByIDForUpdate(ctx context.Context, id uint) (*models.AddonPurchase, error)
	Update(ctx context.Context, purchase *models.AddonPurchase) error
	ListByUser(ctx context.Context, userID uint) ([]models.AddonPurchase, error)
	ListByBatchIDs(ctx context.Context, batchIDs []string) ([]models.AddonPurchase, error)
	CancelActiveInBatch(ctx context.Context, batchID string, at time.Time) (int64, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	StandaloneActiveRevenue(ctx context.Context) (decimal.Decimal, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, metadata map[string]string) (string, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
}

type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, user *models.User, purchase *models.PackagePurchase) error
}

// IdempotencyStore deduplicates purchase requests by caller-supplied key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (result string, reserved bool, err error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

type AssetStorage interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
	PublicURL(key string) string
}
