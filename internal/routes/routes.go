package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletapi/internal/auth"
	"github.com/congo-pay/walletapi/internal/config"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/logging"
	"github.com/congo-pay/walletapi/internal/middleware"
	"github.com/congo-pay/walletapi/internal/notification"
	"github.com/congo-pay/walletapi/internal/payments"
	"github.com/congo-pay/walletapi/internal/wallet"
)

const apiPrefix = "/api/v1"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	codec, err := auth.NewCodec(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL, d.Cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// Repositories fall back to memory in development when Postgres is absent.
	var (
		identityRepo identity.Repository
		walletRepo   wallet.Repository
		store        ledger.Store
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		store = ledger.NewPostgresStore(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		store = ledger.NewInMemory()
	}

	identitySvc := identity.NewService(identityRepo, d.Logger)
	walletSvc := wallet.NewService(walletRepo, d.Logger)
	ledgerSvc := ledger.NewService(store, walletSvc, d.Logger)
	authSvc := auth.NewService(codec, identityRepo, d.Logger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(identityRepo, walletSvc, ledgerSvc, notifier, d.Logger)
	resolver := auth.NewResolver(codec, identityRepo)

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Authenticate(resolver))
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	api := app.Group(apiPrefix, middleware.Enforce(publicRoutes()))
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID := middleware.RequestIDFrom(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	anonymousWrites := middleware.AnonymousWriteLimit(d.Cfg.AnonymousWritesPerMinute)

	RegisterIdentityRoutes(api, identitySvc, identity.NewHandler(identitySvc), codec, d.Logger)
	RegisterAuthRoutes(api, auth.NewHandler(authSvc),
		middleware.CredentialRateLimit(d.Cache, "exists", d.Cfg.CredentialChecksPerMinute, middleware.ByQuery("email")),
		middleware.CredentialRateLimit(d.Cache, "refresh", d.Cfg.CredentialChecksPerMinute, middleware.ByIP),
	)
	RegisterProfileRoutes(api, walletSvc, ledgerSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	RegisterWalletRoutes(api, wallet.NewHandler(walletSvc), ledgerHandler)
	RegisterTransactionRoutes(api, ledgerHandler, payments.NewHandler(paymentSvc), anonymousWrites)

	return nil
}

// publicRoutes lists everything an anonymous caller may reach.
func publicRoutes() *middleware.Policy {
	return middleware.NewPolicy().
		Allow(fiber.MethodGet, apiPrefix+"/ping").
		Allow(fiber.MethodPost, apiPrefix+"/accounts").
		Allow(fiber.MethodGet, apiPrefix+"/account/exists").
		Allow(fiber.MethodPost, apiPrefix+"/account/token/refresh").
		Allow(fiber.MethodPost, apiPrefix+"/transactions/by-address").
		Allow(fiber.MethodPost, apiPrefix+"/transactions/by-username")
}
