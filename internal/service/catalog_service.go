package service

import (
	"context"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
)

// CatalogService manages the packages and addons customers can buy. Changes
// never reach purchases already recorded.
type CatalogService struct {
	packages PackageStore
	addons   AddonStore
	log      *zap.Logger
}

func NewCatalogService(packages PackageStore, addons AddonStore, log *zap.Logger) *CatalogService {
	return &CatalogService{
		packages: packages,
		addons:   addons,
		log:      log,
	}
}

func (s *CatalogService) ListPackages(ctx context.Context, includeInactive bool) ([]models.Package, error) {
	pkgs, err := s.packages.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	if pkgs == nil {
		pkgs = []models.Package{}
	}
	return pkgs, nil
}

// GetPackage hides inactive packages unless includeInactive is set.
func (s *CatalogService) GetPackage(ctx context.Context, id uint, includeInactive bool) (*models.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive && !includeInactive {
		return nil, apperrors.NotFound("Package")
	}
	return pkg, nil
}

func (s *CatalogService) CreatePackage(ctx context.Context, req models.CreatePackageRequest) (*models.Package, error) {
	pkg := &models.Package{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price.Round(2),
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("package created", zap.Uint("package_id", pkg.ID), zap.String("name", pkg.Name))
	return pkg, nil
}

func (s *CatalogService) UpdatePackage(ctx context.Context, id uint, req models.UpdatePackageRequest) (*models.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Description != nil {
		pkg.Description = *req.Description
	}
	if req.Price != nil {
		pkg.Price = req.Price.Round(2)
	}
	if req.DurationDays != nil {
		pkg.DurationDays = *req.DurationDays
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}
	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("package updated", zap.Uint("package_id", pkg.ID))
	return pkg, nil
}

func (s *CatalogService) ListAddons(ctx context.Context, includeInactive bool) ([]models.Addon, error) {
	addons, err := s.addons.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	if addons == nil {
		addons = []models.Addon{}
	}
	return addons, nil
}

func (s *CatalogService) GetAddon(ctx context.Context, id uint, includeInactive bool) (*models.Addon, error) {
	addon, err := s.addons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !addon.IsActive && !includeInactive {
		return nil, apperrors.NotFound("Addon")
	}
	return addon, nil
}

func (s *CatalogService) CreateAddon(ctx context.Context, req models.CreateAddonRequest) (*models.Addon, error) {
	addon := &models.Addon{
		Name:         req.Name,
		Description:  req.Description,
		PriceType:    req.PriceType,
		BasePrice:    req.BasePrice.Round(2),
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := s.addons.Create(ctx, addon); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("addon created", zap.Uint("addon_id", addon.ID), zap.String("name", addon.Name))
	return addon, nil
}

func (s *CatalogService) UpdateAddon(ctx context.Context, id uint, req models.UpdateAddonRequest) (*models.Addon, error) {
	addon, err := s.addons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		addon.Name = *req.Name
	}
	if req.Description != nil {
		addon.Description = *req.Description
	}
	if req.PriceType != nil {
		addon.PriceType = *req.PriceType
	}
	if req.BasePrice != nil {
		addon.BasePrice = req.BasePrice.Round(2)
	}
	if req.DurationDays != nil {
		addon.DurationDays = req.DurationDays
	}
	if req.IsActive != nil {
		addon.IsActive = *req.IsActive
	}
	if err := s.addons.Update(ctx, addon); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("addon updated", zap.Uint("addon_id", addon.ID))
	return addon, nil
}
