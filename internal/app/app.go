// Package app assembles repositories, providers and services from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/psp"
	"github.com/noah-isme/church-admin-api/internal/repository"
	"github.com/noah-isme/church-admin-api/internal/service"
	"github.com/noah-isme/church-admin-api/pkg/cache"
	"github.com/noah-isme/church-admin-api/pkg/config"
	"github.com/noah-isme/church-admin-api/pkg/database"
	"github.com/noah-isme/church-admin-api/pkg/export"
	"github.com/noah-isme/church-admin-api/pkg/jobs"
	"github.com/noah-isme/church-admin-api/pkg/resilience"
	"github.com/noah-isme/church-admin-api/pkg/storage"
)

const cacheNamespace = "church-admin:"

// App holds the wired services and the connections they depend on.
type App struct {
	DB    *sqlx.DB
	Redis *redis.Client
	Users *repository.UserRepository

	Metrics        *service.MetricsService
	Auth           *service.AuthService
	Pix            *service.PixService
	Reconciliation *service.ReconciliationService
	Offerings      *service.OfferingService
	Donations      *service.DonationService
	Notifications  *service.NotificationService

	logger *zap.Logger
}

// New connects to Postgres and Redis and builds every service. Redis is
// optional: when caching is disabled or the server is unreachable the app
// runs without it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	a := &App{DB: db, logger: logger, Metrics: service.NewMetricsService()}

	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			a.Redis = client
		}
	}

	receipts, err := newReceiptStore(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	validate := validator.New()
	users := repository.NewUserRepository(db)
	a.Users = users
	audit := repository.NewAuditRepository(db)
	offerings := repository.NewOfferingRepository(db)
	donations := repository.NewDonationRepository(db)

	var cacheSvc *service.CacheService
	if a.Redis != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(a.Redis, cacheNamespace, logger), a.Metrics, cfg.Cache.TTL, logger, true)
	}

	a.Notifications = service.NewNotificationService(service.NewLogSink(logger), a.Metrics, logger, jobs.QueueConfig{
		Workers:    2,
		BufferSize: 256,
		MaxRetries: 3,
		RetryDelay: time.Second,
	})

	a.Auth = service.NewAuthService(users, audit, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	a.Pix = service.NewPixService(offerings, audit, provider, cacheSvc, a.Metrics, a.Notifications, validate, logger, service.PixConfig{
		ChargeTTL:            cfg.Pix.ChargeTTL,
		RequestTimeout:       cfg.Pix.RequestTimeout,
		MinAmount:            cfg.Pix.MinAmount,
		MaxAmount:            cfg.Pix.MaxAmount,
		DefaultMaxAgeDays:    cfg.Reconcile.MaxAgeDays,
		ReconcileConcurrency: cfg.Reconcile.Concurrency,
		CacheTTL:             cfg.Cache.TTL,
	})
	a.Reconciliation = service.NewReconciliationService(a.Pix, audit, audit, logger)
	a.Offerings = service.NewOfferingService(offerings, audit, export.NewCSVExporter(), export.NewPDFExporter(), validate, logger)
	a.Donations = service.NewDonationService(donations, offerings, audit, export.NewReceiptRenderer(), receipts, export.Church{
		Name:    cfg.Receipts.ChurchName,
		Address: cfg.Receipts.ChurchAddr,
		Phone:   cfg.Receipts.ChurchPhone,
		TaxID:   cfg.Receipts.ChurchTaxID,
	}, validate, logger)

	return a, nil
}

// PingDB checks the Postgres connection.
func (a *App) PingDB(ctx context.Context) error {
	return a.DB.PingContext(ctx)
}

// PingRedis checks the Redis connection. Without Redis it reports healthy.
func (a *App) PingRedis(ctx context.Context) error {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Ping(ctx).Err()
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newProvider(cfg *config.Config, logger *zap.Logger) (psp.Provider, error) {
	switch cfg.Pix.Provider {
	case config.PixProviderHTTP:
		if cfg.Pix.ProviderURL == "" {
			return nil, fmt.Errorf("PIX_PROVIDER_URL is required for the http provider")
		}
		client := &http.Client{Timeout: cfg.Pix.RequestTimeout}
		return psp.NewHTTPProvider(client, cfg.Pix.ProviderURL, cfg.Pix.APIKey, resilience.NewCircuitBreaker("pix-psp"), resilience.Config{
			MaxRetries:     cfg.Pix.MaxRetries,
			InitialBackoff: cfg.Pix.InitialBackoff,
		}), nil
	case config.PixProviderSimulated, "":
		if cfg.Env == config.EnvProduction {
			return nil, fmt.Errorf("PIX_PROVIDER must be %q in production, got %q", config.PixProviderHTTP, cfg.Pix.Provider)
		}
		logger.Warn("using simulated PIX provider")
		return psp.NewSimulatedProvider(psp.Merchant{
			Key:  cfg.Pix.Key,
			Name: cfg.Pix.MerchantName,
			City: cfg.Pix.MerchantCity,
		}), nil
	default:
		return nil, fmt.Errorf("unknown PIX_PROVIDER %q", cfg.Pix.Provider)
	}
}

func newReceiptStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Receipts.Backend {
	case config.ReceiptsBackendS3:
		if cfg.Receipts.S3Bucket == "" {
			return nil, fmt.Errorf("RECEIPTS_S3_BUCKET is required for the s3 backend")
		}
		return storage.NewS3Storage(ctx, cfg.Receipts.S3Bucket, cfg.Receipts.S3Region)
	case config.ReceiptsBackendLocal, "":
		return storage.NewLocalStorage(cfg.Receipts.StorageDir)
	default:
		return nil, fmt.Errorf("unknown RECEIPTS_BACKEND %q", cfg.Receipts.Backend)
	}
}
