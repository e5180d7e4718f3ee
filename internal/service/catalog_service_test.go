package service

import (
	"context"
	"testing"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogPackages(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemory()
	svc := NewCatalogService(mem.Packages(), mem.Addons(), zap.NewNop())

	pkg, err := svc.CreatePackage(ctx, models.CreatePackageRequest{
		Name:         "Starter",
		Price:        decimal.RequireFromString("499.00"),
		DurationDays: 30,
	})
	require.NoError(t, err)
	assert.True(t, pkg.IsActive)

	_, err = svc.CreatePackage(ctx, models.CreatePackageRequest{Name: "Starter", Price: decimal.NewFromInt(1), DurationDays: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	inactive := false
	price := decimal.RequireFromString("549.50")
	updated, err := svc.UpdatePackage(ctx, pkg.ID, models.UpdatePackageRequest{Price: &price, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Starter", updated.Name)
	assert.Equal(t, "549.50", updated.Price.StringFixed(2))
	assert.False(t, updated.IsActive)

	_, err = svc.GetPackage(ctx, pkg.ID, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	got, err := svc.GetPackage(ctx, pkg.ID, true)
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, got.ID)

	public, err := svc.ListPackages(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, public)
	all, err := svc.ListPackages(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.UpdatePackage(ctx, 999, models.UpdatePackageRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCatalogPriceChangeLeavesPurchasesAlone(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	catalog := NewCatalogService(f.mem.Packages(), f.mem.Addons(), zap.NewNop())
	pkg := f.mem.AddPackage("Starter", "499", 30, true)

	p, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)

	price := decimal.NewFromInt(10)
	days := 1
	_, err = catalog.UpdatePackage(ctx, pkg.ID, models.UpdatePackageRequest{Price: &price, DurationDays: &days})
	require.NoError(t, err)

	stored, err := f.mem.PackagePurchases().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "499.00", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, p.ExpirationDate, stored.ExpirationDate)
}

func TestCatalogAddons(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemory()
	svc := NewCatalogService(mem.Packages(), mem.Addons(), zap.NewNop())

	off := false
	addon, err := svc.CreateAddon(ctx, models.CreateAddonRequest{
		Name:      "Brand Guidelines PDF",
		PriceType: models.PriceTypeOneTime,
		BasePrice: decimal.NewFromInt(150),
		IsActive:  &off,
	})
	require.NoError(t, err)
	assert.False(t, addon.IsActive)
	assert.Nil(t, addon.DurationDays)

	on := true
	recurring := models.PriceTypeRecurring
	days := 30
	updated, err := svc.UpdateAddon(ctx, addon.ID, models.UpdateAddonRequest{IsActive: &on, PriceType: &recurring, DurationDays: &days})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, models.PriceTypeRecurring, updated.PriceType)
	require.NotNil(t, updated.DurationDays)
	assert.Equal(t, 30, *updated.DurationDays)

	list, err := svc.ListAddons(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.GetAddon(ctx, addon.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Brand Guidelines PDF", got.Name)
}
