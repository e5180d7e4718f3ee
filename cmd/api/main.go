package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sefazor/brandkit-backend/internal/config"
	"github.com/sefazor/brandkit-backend/internal/handler"
	"github.com/sefazor/brandkit-backend/internal/middleware"
	"github.com/sefazor/brandkit-backend/pkg/database"
	"github.com/sefazor/brandkit-backend/pkg/email"
	"github.com/sefazor/brandkit-backend/pkg/idempotency"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"github.com/sefazor/brandkit-backend/pkg/payment"
	"github.com/sefazor/brandkit-backend/pkg/storage"
)

func main() {
	// Load .env; deployments pass real environment variables instead
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}

	cfg := config.LoadConfig()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// Initialize database
	db, err := database.NewDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if err := db.Migrate(); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := db.Seed(); err != nil {
			return err
		}
	}

	ext, closeExt, err := externals(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeExt()

	api, err := InitializeAPI(db, cfg, log, ext)
	if err != nil {
		return err
	}
	if err := api.auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler(log),
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestContext())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api.router.Setup(app, api.tokens)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}

// externals connects the optional providers. Anything left unconfigured stays
// a nil interface and the feature is off.
func externals(ctx context.Context, cfg *config.Config, log *zap.Logger) (Externals, func(), error) {
	var ext Externals
	closers := []func(){}

	if cfg.Redis.Addr != "" {
		store := idempotency.NewRedisStore(idempotency.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), cfg.IdempotencyTTL, cfg.PendingTTL)
		ext.Idempotency = store
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				log.Warn("close redis", zap.Error(err))
			}
		})
	} else {
		log.Warn("REDIS_ADDR not set, Idempotency-Key headers are ignored")
	}

	if cfg.Stripe.SecretKey != "" {
		ext.Payments = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	}

	if cfg.Email.ResendAPIKey != "" {
		ext.Receipts = email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, log)
	}

	if cfg.R2.Bucket != "" {
		r2, err := storage.NewCloudflareStorage(ctx, cfg)
		if err != nil {
			return Externals{}, nil, err
		}
		ext.Storage = r2
	} else {
		log.Warn("R2_BUCKET not set, asset uploads are disabled")
	}

	return ext, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
