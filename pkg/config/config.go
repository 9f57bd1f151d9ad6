package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// PIX provider kinds.
const (
	PixProviderHTTP      = "http"
	PixProviderSimulated = "simulated"
)

// Receipt storage backends.
const (
	ReceiptsBackendLocal = "local"
	ReceiptsBackendS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Pix       PixConfig
	Reconcile ReconcileConfig
	Cache     CacheConfig
	Receipts  ReceiptsConfig
	Tracing   TracingConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PixConfig configures the payment service provider integration and charge bounds.
type PixConfig struct {
	Provider       string
	ProviderURL    string
	APIKey         string
	WebhookSecret  string
	AllowUnsigned  bool
	ChargeTTL      time.Duration
	RequestTimeout time.Duration
	MinAmount      int64
	MaxAmount      int64
	MaxRetries     int
	InitialBackoff time.Duration
	MerchantName   string
	MerchantCity   string
	Key            string
}

// ReconcileConfig tunes the PIX reconciliation batch.
type ReconcileConfig struct {
	MaxAgeDays  int
	Concurrency int
}

// CacheConfig toggles Redis caching of PIX listings.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ReceiptsConfig controls donation receipt rendering and archival.
type ReceiptsConfig struct {
	Backend     string
	StorageDir  string
	S3Bucket    string
	S3Region    string
	ChurchName  string
	ChurchAddr  string
	ChurchPhone string
	ChurchTaxID string
}

// TracingConfig points the OpenTelemetry exporter at a collector. Empty endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

// UnsignedWebhooksAllowed reports whether PIX webhooks may skip signature checks.
// Only honoured outside production and only when no secret is configured.
func (c *Config) UnsignedWebhooksAllowed() bool {
	return c.Env != EnvProduction && c.Pix.WebhookSecret == "" && c.Pix.AllowUnsigned
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Pix = PixConfig{
		Provider:       strings.ToLower(v.GetString("PIX_PROVIDER")),
		ProviderURL:    strings.TrimRight(v.GetString("PIX_PROVIDER_URL"), "/"),
		APIKey:         v.GetString("PIX_PROVIDER_KEY"),
		WebhookSecret:  v.GetString("PIX_WEBHOOK_SECRET"),
		AllowUnsigned:  v.GetBool("PIX_ALLOW_UNSIGNED_WEBHOOKS"),
		ChargeTTL:      parseDuration(v.GetString("PIX_CHARGE_TTL"), 30*time.Minute),
		RequestTimeout: parseDuration(v.GetString("PIX_REQUEST_TIMEOUT"), 10*time.Second),
		MinAmount:      v.GetInt64("PIX_MIN_AMOUNT"),
		MaxAmount:      v.GetInt64("PIX_MAX_AMOUNT"),
		MaxRetries:     v.GetInt("PIX_MAX_RETRIES"),
		InitialBackoff: parseDuration(v.GetString("PIX_INITIAL_BACKOFF"), 200*time.Millisecond),
		MerchantName:   v.GetString("PIX_MERCHANT_NAME"),
		MerchantCity:   v.GetString("PIX_MERCHANT_CITY"),
		Key:            v.GetString("PIX_KEY"),
	}
	if cfg.Pix.MinAmount <= 0 {
		cfg.Pix.MinAmount = 100
	}
	if cfg.Pix.MaxAmount < cfg.Pix.MinAmount {
		cfg.Pix.MaxAmount = 100_000_000
	}

	cfg.Reconcile = ReconcileConfig{
		MaxAgeDays:  v.GetInt("RECONCILE_MAX_AGE_DAYS"),
		Concurrency: v.GetInt("RECONCILE_CONCURRENCY"),
	}
	if cfg.Reconcile.MaxAgeDays <= 0 {
		cfg.Reconcile.MaxAgeDays = 7
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.Receipts = ReceiptsConfig{
		Backend:     strings.ToLower(v.GetString("RECEIPTS_BACKEND")),
		StorageDir:  v.GetString("RECEIPTS_STORAGE_DIR"),
		S3Bucket:    v.GetString("RECEIPTS_S3_BUCKET"),
		S3Region:    v.GetString("RECEIPTS_S3_REGION"),
		ChurchName:  v.GetString("CHURCH_NAME"),
		ChurchAddr:  v.GetString("CHURCH_ADDRESS"),
		ChurchPhone: v.GetString("CHURCH_PHONE"),
		ChurchTaxID: v.GetString("CHURCH_CNPJ"),
	}

	cfg.Tracing = TracingConfig{
		Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: v.GetString("OTEL_SERVICE_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "church_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "church-admin-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PIX_PROVIDER", PixProviderSimulated)
	v.SetDefault("PIX_PROVIDER_URL", "https://api.pix-provider.com")
	v.SetDefault("PIX_PROVIDER_KEY", "")
	v.SetDefault("PIX_WEBHOOK_SECRET", "")
	v.SetDefault("PIX_ALLOW_UNSIGNED_WEBHOOKS", false)
	v.SetDefault("PIX_CHARGE_TTL", "30m")
	v.SetDefault("PIX_REQUEST_TIMEOUT", "10s")
	v.SetDefault("PIX_MIN_AMOUNT", 100)
	v.SetDefault("PIX_MAX_AMOUNT", 100_000_000)
	v.SetDefault("PIX_MAX_RETRIES", 2)
	v.SetDefault("PIX_INITIAL_BACKOFF", "200ms")
	v.SetDefault("PIX_MERCHANT_NAME", "IGREJA EXEMPLO")
	v.SetDefault("PIX_MERCHANT_CITY", "SAO PAULO")
	v.SetDefault("PIX_KEY", "")

	v.SetDefault("RECONCILE_MAX_AGE_DAYS", 7)
	v.SetDefault("RECONCILE_CONCURRENCY", 4)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("RECEIPTS_BACKEND", ReceiptsBackendLocal)
	v.SetDefault("RECEIPTS_STORAGE_DIR", "./receipts")
	v.SetDefault("RECEIPTS_S3_BUCKET", "")
	v.SetDefault("RECEIPTS_S3_REGION", "sa-east-1")
	v.SetDefault("CHURCH_NAME", "Igreja Exemplo")
	v.SetDefault("CHURCH_ADDRESS", "")
	v.SetDefault("CHURCH_PHONE", "")
	v.SetDefault("CHURCH_CNPJ", "")

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "church-admin-api")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
