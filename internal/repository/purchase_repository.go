package repository

import (
	"context"
	"time"

	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PackagePurchaseRepository struct {
	db *gorm.DB
}

func NewPackagePurchaseRepository(db *gorm.DB) *PackagePurchaseRepository {
	return &PackagePurchaseRepository{
		db: db,
	}
}

func (r *PackagePurchaseRepository) Create(ctx context.Context, purchase *models.PackagePurchase) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(purchase).Error)
}

func (r *PackagePurchaseRepository) GetByID(ctx context.Context, id uint) (*models.PackagePurchase, error) {
	var purchase models.PackagePurchase
	if err := conn(ctx, r.db).Preload("Package").First(&purchase, id).Error; err != nil {
		return nil, notFound(err, "Purchase")
	}
	return &purchase, nil
}

func (r *PackagePurchaseRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.PackagePurchase, error) {
	var purchase models.PackagePurchase
	if err := forUpdate(conn(ctx, r.db)).First(&purchase, id).Error; err != nil {
		return nil, notFound(err, "Purchase")
	}
	return &purchase, nil
}

func (r *PackagePurchaseRepository) GetByBatchID(ctx context.Context, batchID string) (*models.PackagePurchase, error) {
	var purchase models.PackagePurchase
	err := conn(ctx, r.db).Preload("Package").
		Where("purchase_batch_id = ?", batchID).
		First(&purchase).Error
	if err != nil {
		return nil, notFound(err, "Purchase")
	}
	return &purchase, nil
}

func (r *PackagePurchaseRepository) Update(ctx context.Context, purchase *models.PackagePurchase) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Save(purchase).Error)
}

func (r *PackagePurchaseRepository) ListByUser(ctx context.Context, userID uint) ([]models.PackagePurchase, error) {
	var purchases []models.PackagePurchase
	err := conn(ctx, r.db).Preload("Package").
		Where("user_id = ?", userID).
		Order("purchase_date DESC, id DESC").
		Find(&purchases).Error
	return purchases, translate(err)
}

func (r *PackagePurchaseRepository) List(ctx context.Context, filter models.PurchaseFilter) ([]models.PackagePurchase, int64, error) {
	q := conn(ctx, r.db).Model(&models.PackagePurchase{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var purchases []models.PackagePurchase
	err := q.Preload("Package").
		Order("purchase_date DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&purchases).Error
	return purchases, total, translate(err)
}

// ExpireDue marks active purchases whose expiration has passed.
func (r *PackagePurchaseRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&models.PackagePurchase{}).
		Where("status = ? AND expiration_date <= ?", models.PurchaseStatusActive, now).
		Update("status", models.PurchaseStatusExpired)
	return res.RowsAffected, translate(res.Error)
}

func (r *PackagePurchaseRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var counts []models.StatusCount
	err := conn(ctx, r.db).Model(&models.PackagePurchase{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, translate(err)
}

func (r *PackagePurchaseRepository) ActiveRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := conn(ctx, r.db).Model(&models.PackagePurchase{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ?", models.PurchaseStatusActive).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, translate(err)
	}
	return total, nil
}

type AddonPurchaseRepository struct {
	db *gorm.DB
}

func NewAddonPurchaseRepository(db *gorm.DB) *AddonPurchaseRepository {
	return &AddonPurchaseRepository{
		db: db,
	}
}

func (r *AddonPurchaseRepository) Create(ctx context.Context, purchase *models.AddonPurchase) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(purchase).Error)
}

func (r *AddonPurchaseRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.AddonPurchase, error) {
	var purchase models.AddonPurchase
	if err := forUpdate(conn(ctx, r.db)).First(&purchase, id).Error; err != nil {
		return nil, notFound(err, "Addon purchase")
	}
	return &purchase, nil
}

func (r *AddonPurchaseRepository) Update(ctx context.Context, purchase *models.AddonPurchase) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Save(purchase).Error)
}

func (r *AddonPurchaseRepository) ListByUser(ctx context.Context, userID uint) ([]models.AddonPurchase, error) {
	var purchases []models.AddonPurchase
	err := conn(ctx, r.db).Preload("Addon").
		Where("user_id = ?", userID).
		Order("purchase_date DESC, id DESC").
		Find(&purchases).Error
	return purchases, translate(err)
}

func (r *AddonPurchaseRepository) ListByBatchIDs(ctx context.Context, batchIDs []string) ([]models.AddonPurchase, error) {
	if len(batchIDs) == 0 {
		return []models.AddonPurchase{}, nil
	}
	var purchases []models.AddonPurchase
	err := conn(ctx, r.db).Preload("Addon").
		Where("purchase_batch_id IN ?", batchIDs).
		Order("id ASC").
		Find(&purchases).Error
	return purchases, translate(err)
}

// CancelActiveInBatch cancels the still-active addons bought in one checkout.
func (r *AddonPurchaseRepository) CancelActiveInBatch(ctx context.Context, batchID string, at time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&models.AddonPurchase{}).
		Where("purchase_batch_id = ? AND status = ?", batchID, models.PurchaseStatusActive).
		Updates(map[string]interface{}{
			"status":       models.PurchaseStatusCancelled,
			"cancelled_at": at,
		})
	return res.RowsAffected, translate(res.Error)
}

func (r *AddonPurchaseRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&models.AddonPurchase{}).
		Where("status = ? AND expiration_date <= ?", models.PurchaseStatusActive, now).
		Update("status", models.PurchaseStatusExpired)
	return res.RowsAffected, translate(res.Error)
}

func (r *AddonPurchaseRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var counts []models.StatusCount
	err := conn(ctx, r.db).Model(&models.AddonPurchase{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, translate(err)
}

// StandaloneActiveRevenue sums active addons that were not part of a package
// checkout; batch addons are already counted in the package total.
func (r *AddonPurchaseRepository) StandaloneActiveRevenue(ctx context.Context) (decimal.Decimal, error) {
	db := conn(ctx, r.db)
	batches := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.PackagePurchase{}).
		Select("purchase_batch_id")

	var total decimal.Decimal
	row := db.Model(&models.AddonPurchase{}).
		Select("COALESCE(SUM(amount_paid), 0)").
		Where("status = ? AND purchase_batch_id NOT IN (?)", models.PurchaseStatusActive, batches).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, translate(err)
	}
	return total, nil
}
