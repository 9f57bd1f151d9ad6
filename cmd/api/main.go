package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/church-admin-api/api/swagger"
	"github.com/noah-isme/church-admin-api/internal/app"
	"github.com/noah-isme/church-admin-api/internal/handler"
	"github.com/noah-isme/church-admin-api/pkg/config"
	"github.com/noah-isme/church-admin-api/pkg/logger"
	"github.com/noah-isme/church-admin-api/pkg/tracing"
	"github.com/noah-isme/church-admin-api/pkg/webhook"
)

// @title Church Admin API
// @version 1.0.0
// @description Church back-office API: offerings, PIX payments and donation receipts
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		logr.Fatal("failed to init tracing", zap.Error(err))
	}

	application, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	defer application.Close() //nolint:errcheck

	application.Notifications.Start(ctx)

	verifier := webhook.NewVerifier(cfg.Pix.WebhookSecret, cfg.UnsignedWebhooksAllowed())
	if verifier.Unsigned() {
		logr.Warn("PIX webhook signature checks are disabled")
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         application.Auth,
		Verifier:       verifier,
		Metrics:        application.Metrics,
		Logger:         logr,
	}, handler.Handlers{
		Auth:      handler.NewAuthHandler(application.Auth),
		Pix:       handler.NewPixHandler(application.Pix, application.Reconciliation),
		Webhook:   handler.NewWebhookHandler(application.Pix, verifier.Unsigned(), logr),
		Offerings: handler.NewOfferingHandler(application.Offerings),
		Donations: handler.NewDonationHandler(application.Donations),
		System: handler.NewMetricsHandler(application.Metrics, map[string]handler.ReadinessCheck{
			"database": application.PingDB,
			"redis":    application.PingRedis,
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "pix_provider", cfg.Pix.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	if err := application.Notifications.Stop(shutdownCtx); err != nil {
		logr.Error("notification drain", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Error("tracing shutdown", zap.Error(err))
	}
}
