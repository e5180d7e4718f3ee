//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/sefazor/brandkit-backend/internal/config"
	"github.com/sefazor/brandkit-backend/internal/handler"
	"github.com/sefazor/brandkit-backend/internal/repository"
	"github.com/sefazor/brandkit-backend/internal/service"
	"github.com/sefazor/brandkit-backend/pkg/database"
	"github.com/sefazor/brandkit-backend/pkg/jwt"
	"github.com/sefazor/brandkit-backend/pkg/utils"
	"go.uber.org/zap"
)

func InitializeAPI(db *database.Database, cfg *config.Config, log *zap.Logger, ext Externals) (*application, error) {
	wire.Build(
		provideGorm,
		provideTokens,
		provideRegistry,

		// Repositories
		repository.NewStore,
		repository.NewUserRepository,
		repository.NewPackageRepository,
		repository.NewAddonRepository,
		repository.NewPackagePurchaseRepository,
		repository.NewAddonPurchaseRepository,
		repository.NewFormSubmissionRepository,
		wire.Bind(new(service.Transactor), new(*repository.Store)),
		wire.Bind(new(service.UserStore), new(*repository.UserRepository)),
		wire.Bind(new(service.PackageStore), new(*repository.PackageRepository)),
		wire.Bind(new(service.AddonStore), new(*repository.AddonRepository)),
		wire.Bind(new(service.PackagePurchaseStore), new(*repository.PackagePurchaseRepository)),
		wire.Bind(new(service.AddonPurchaseStore), new(*repository.AddonPurchaseRepository)),
		wire.Bind(new(service.FormSubmissionStore), new(*repository.FormSubmissionRepository)),
		wire.Bind(new(service.TokenIssuer), new(*jwt.Manager)),

		// Services
		service.NewAuthService,
		service.NewFormService,
		service.NewCatalogService,
		service.NewAdminService,
		providePurchaseService,
		provideAssetService,

		// Validator
		utils.NewValidator,

		// Handlers
		handler.NewAuthHandler,
		handler.NewFormHandler,
		handler.NewAssetHandler,
		handler.NewPurchaseHandler,
		handler.NewCatalogHandler,
		handler.NewAdminHandler,
		handler.NewHealthHandler,
		wire.Bind(new(handler.Pinger), new(*database.Database)),
		wire.Struct(new(handler.Router), "*"),

		wire.Struct(new(application), "*"),
	)
	return nil, nil
}
