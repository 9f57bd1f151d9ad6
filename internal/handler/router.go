package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/middleware"
	"github.com/noah-isme/church-admin-api/internal/service"
	"github.com/noah-isme/church-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/church-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/church-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/church-admin-api/pkg/webhook"
)

// RouterConfig carries the cross-cutting collaborators of the HTTP surface.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Tokens         middleware.TokenValidator
	Verifier       *webhook.Verifier
	Metrics        *service.MetricsService
	Logger         *zap.Logger
}

// Handlers groups every endpoint handler.
type Handlers struct {
	Auth      *AuthHandler
	Pix       *PixHandler
	Webhook   *WebhookHandler
	Offerings *OfferingHandler
	Donations *DonationHandler
	System    *MetricsHandler
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/pix-webhook", middleware.WebhookSignature(cfg.Verifier, cfg.Logger), h.Webhook.Receive)
	api.GET("/pix-webhook", h.Webhook.Health)

	secured := api.Group("")
	secured.Use(middleware.JWT(cfg.Tokens))
	secured.GET("/auth/permissions", h.Auth.Permissions)

	read := middleware.RequirePermissions(authz.OfferingsRead)
	write := middleware.RequirePermissions(authz.OfferingsWrite)

	offerings := secured.Group("/offerings")
	offerings.POST("/pix", write, h.Pix.CreateCharge)
	offerings.GET("/pix", read, h.Pix.List)
	offerings.POST("/reconcile", write, h.Pix.Reconcile)
	offerings.GET("/reconcile", read, h.Pix.History)
	offerings.GET("/export", read, h.Offerings.Export)
	offerings.GET("", read, h.Offerings.List)
	offerings.POST("", write, h.Offerings.Create)
	offerings.GET("/:id", read, h.Offerings.Get)

	donations := secured.Group("/donations")
	donations.POST("", write, h.Donations.Create)
	donations.GET("/:id/receipt", read, h.Donations.Receipt)

	people := secured.Group("/people")
	people.GET("/:id/annual-report", read, h.Donations.AnnualReport)

	return r
}
