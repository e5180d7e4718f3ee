package repository

import (
	"context"

	"github.com/sefazor/brandkit-backend/internal/models"
	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{
		db: db,
	}
}

func (r *PackageRepository) GetByID(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	if err := conn(ctx, r.db).First(&pkg, id).Error; err != nil {
		return nil, notFound(err, "Package")
	}
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context, includeInactive bool) ([]models.Package, error) {
	var packages []models.Package
	q := conn(ctx, r.db).Order("price ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&packages).Error
	return packages, translate(err)
}

func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	return translate(conn(ctx, r.db).Create(pkg).Error)
}

func (r *PackageRepository) Update(ctx context.Context, pkg *models.Package) error {
	return translate(conn(ctx, r.db).Save(pkg).Error)
}

type AddonRepository struct {
	db *gorm.DB
}

func NewAddonRepository(db *gorm.DB) *AddonRepository {
	return &AddonRepository{
		db: db,
	}
}

func (r *AddonRepository) GetByID(ctx context.Context, id uint) (*models.Addon, error) {
	var addon models.Addon
	if err := conn(ctx, r.db).First(&addon, id).Error; err != nil {
		return nil, notFound(err, "Addon")
	}
	return &addon, nil
}

// GetByIDs returns the addons that exist among ids; callers compare lengths.
func (r *AddonRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Addon, error) {
	if len(ids) == 0 {
		return []models.Addon{}, nil
	}
	var addons []models.Addon
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&addons).Error
	return addons, translate(err)
}

func (r *AddonRepository) List(ctx context.Context, includeInactive bool) ([]models.Addon, error) {
	var addons []models.Addon
	q := conn(ctx, r.db).Order("base_price ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&addons).Error
	return addons, translate(err)
}

func (r *AddonRepository) Create(ctx context.Context, addon *models.Addon) error {
	return translate(conn(ctx, r.db).Create(addon).Error)
}

func (r *AddonRepository) Update(ctx context.Context, addon *models.Addon) error {
	return translate(conn(ctx, r.db).Save(addon).Error)
}
