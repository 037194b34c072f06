package app

import (
	"strings"
	"time"

	"github.com/lclrke/dawa-dashboard/internal/platform/envutil"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type Config struct {
	LogMode     string
	Port        string
	ServiceName string
	Environment string
	Version     string

	JWTSecretKey   string
	JWTIssuer      string
	AllowedOrigins []string

	ObjectStorageMode string
	MaxAudioBytes     int

	ExportLockMode string
	ExportLockTTL  time.Duration

	CaptionModel       string
	CaptionTemperature *float64
	CaptionMaxTokens   int

	AutoMigrate bool
	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "dawa-dashboard"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:      envutil.String("JWT_ISSUER", ""),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		ObjectStorageMode: strings.ToLower(envutil.String("OBJECT_STORAGE_MODE", "gcs")),
		MaxAudioBytes:     envutil.Int("MAX_AUDIO_BYTES", 50<<20),

		ExportLockMode: strings.ToLower(envutil.String("EXPORT_LOCK_MODE", "none")),
		ExportLockTTL:  envutil.Duration("EXPORT_LOCK_TTL", 10*time.Minute),

		CaptionModel:     envutil.String("CAPTION_MODEL", ""),
		CaptionMaxTokens: envutil.Int("CAPTION_MAX_TOKENS", 0),

		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),
		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
	if raw := envutil.String("CAPTION_TEMPERATURE", ""); raw != "" {
		t := envutil.Float("CAPTION_TEMPERATURE", 0)
		cfg.CaptionTemperature = &t
	}
	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; every API request will be rejected")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
