package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/middleware"
)

// Router holds every handler the API mounts.
type Router struct {
	Auth      *AuthHandler
	Forms     *FormHandler
	Assets    *AssetHandler
	Purchases *PurchaseHandler
	Catalog   *CatalogHandler
	Admin     *AdminHandler
	Health    *HealthHandler
}

func (r *Router) Setup(app *fiber.App, tokens middleware.TokenValidator) {
	api := app.Group("/api")

	// Public routes
	api.Get("/health", r.Health.Check)

	auth := api.Group("/auth")
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)

	api.Get("/packages", r.Catalog.ListPackages)
	api.Get("/packages/:id", r.Catalog.GetPackage)
	api.Get("/addons", r.Catalog.ListAddons)
	api.Get("/forms/types", r.Forms.ListTypes)

	// Protected routes
	authed := api.Group("", middleware.AuthMiddleware(tokens))

	forms := authed.Group("/forms")
	forms.Get("/:formType", r.Forms.GetFormData)
	forms.Put("/:formType/steps/:step", r.Forms.SaveStep)
	forms.Put("/:formType/complete", r.Forms.CompleteForm)
	forms.Post("/:formType/assets", r.Assets.Upload)

	purchases := authed.Group("/purchases")
	purchases.Get("/", r.Purchases.ListUserPurchases)
	purchases.Post("/", r.Purchases.CreatePackagePurchase)
	purchases.Post("/addons", r.Purchases.CreateAddonPurchase)
	purchases.Put("/addons/:id/cancel", r.Purchases.CancelAddonPurchase)
	purchases.Put("/:id/cancel", r.Purchases.CancelPurchase)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.Get("/packages", r.Catalog.AdminListPackages)
	admin.Get("/packages/:id", r.Catalog.AdminGetPackage)
	admin.Post("/packages", r.Catalog.CreatePackage)
	admin.Put("/packages/:id", r.Catalog.UpdatePackage)
	admin.Get("/addons", r.Catalog.AdminListAddons)
	admin.Get("/addons/:id", r.Catalog.AdminGetAddon)
	admin.Post("/addons", r.Catalog.CreateAddon)
	admin.Put("/addons/:id", r.Catalog.UpdateAddon)

	admin.Get("/purchases", r.Admin.ListPurchases)
	admin.Post("/purchases/expire", r.Admin.ExpirePurchases)
	admin.Put("/purchases/:id/cancel", r.Purchases.CancelPurchase)
	admin.Get("/submissions", r.Admin.ListSubmissions)
	admin.Get("/summary", r.Admin.Summary)
}
