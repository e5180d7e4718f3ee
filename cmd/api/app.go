package main

import (
	"github.com/sefazor/brandkit-backend/internal/config"
	"github.com/sefazor/brandkit-backend/internal/formtype"
	"github.com/sefazor/brandkit-backend/internal/handler"
	"github.com/sefazor/brandkit-backend/internal/repository"
	"github.com/sefazor/brandkit-backend/internal/service"
	"github.com/sefazor/brandkit-backend/pkg/database"
	"github.com/sefazor/brandkit-backend/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Externals are the optional third-party providers. Nil fields switch the
// matching feature off.
type Externals struct {
	Payments    service.PaymentGateway
	Receipts    service.ReceiptSender
	Idempotency service.IdempotencyStore
	Storage     service.AssetStorage
}

type application struct {
	router *handler.Router
	tokens *jwt.Manager
	auth   *service.AuthService
}

func provideGorm(db *database.Database) *gorm.DB {
	return db.DB
}

func provideTokens(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
}

func provideRegistry() *formtype.Registry {
	return formtype.DefaultRegistry()
}

func providePurchaseService(
	tx *repository.Store,
	packages *repository.PackageRepository,
	addons *repository.AddonRepository,
	purchases *repository.PackagePurchaseRepository,
	addonPurchases *repository.AddonPurchaseRepository,
	users *repository.UserRepository,
	log *zap.Logger,
	ext Externals,
) *service.PurchaseService {
	var opts []service.PurchaseOption
	if ext.Payments != nil {
		opts = append(opts, service.WithPaymentGateway(ext.Payments))
	}
	if ext.Receipts != nil {
		opts = append(opts, service.WithReceipts(ext.Receipts))
	}
	if ext.Idempotency != nil {
		opts = append(opts, service.WithIdempotency(ext.Idempotency))
	}
	return service.NewPurchaseService(tx, packages, addons, purchases, addonPurchases, users, log, opts...)
}

func provideAssetService(ext Externals, registry *formtype.Registry, cfg *config.Config, log *zap.Logger) *service.AssetService {
	return service.NewAssetService(ext.Storage, registry, cfg.MaxUploadBytes, log)
}
