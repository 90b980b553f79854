package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	Vision  VisionConfig
	CORS    CORSConfig
	Upload  UploadConfig
	Prompts PromptsConfig
	Pricing PricingConfig
	Email   EmailConfig
	Auth    AuthConfig
}

// AuthConfig holds API authentication settings. An empty key disables
// authentication (local development).
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// EmailConfig holds review notification settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	ReviewAddress string `mapstructure:"review_address"`
}

// PricingConfig holds model pricing lookup settings.
type PricingConfig struct {
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RefreshIntervalSecs int           `mapstructure:"refresh_interval_secs"`
}

// PromptsConfig holds prompt template settings.
type PromptsConfig struct {
	File string `mapstructure:"file"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxFileSizeMB     int64    `mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionProviderConfig holds settings for a single vision model provider.
type VisionProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// VisionConfig holds vision model settings. The flat fields describe the
// primary provider; an optional fallback provider takes over when the
// primary is down or rate limited.
type VisionConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`

	Fallback VisionProviderConfig `mapstructure:"fallback"`
}

// PrimaryConfig returns the primary vision provider config.
func (c *VisionConfig) PrimaryConfig() *VisionProviderConfig {
	return &VisionProviderConfig{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Host:        c.Host,
		Port:        c.Port,
		TimeoutSecs: c.TimeoutSecs,
	}
}

// FallbackConfig returns the fallback vision provider config, or nil if not configured.
func (c *VisionConfig) FallbackConfig() *VisionProviderConfig {
	if c.Fallback.Provider != "" {
		return &c.Fallback
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for review artifacts.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the LEDGERLENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEDGERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ledgerlens")
	v.SetDefault("db.password", "ledgerlens_secret")
	v.SetDefault("db.name", "ledgerlens_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "ledgerlens-reviews")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.allowed_extensions", ".jpg,.jpeg,.png,.pdf")

	// Prompt template defaults
	v.SetDefault("prompts.file", "config/prompts.yaml")

	// Pricing defaults
	v.SetDefault("pricing.cache_ttl", "24h")
	v.SetDefault("pricing.refresh_interval_secs", 3600)

	// Vision defaults (vLLM, a local server that needs no credentials)
	v.SetDefault("vision.provider", "vllm")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "")
	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.host", "localhost")
	v.SetDefault("vision.port", 8000)
	v.SetDefault("vision.timeout_secs", 120)
	v.SetDefault("vision.fallback.provider", "")
	v.SetDefault("vision.fallback.api_key", "")
	v.SetDefault("vision.fallback.model", "")
	v.SetDefault("vision.fallback.base_url", "")
	v.SetDefault("vision.fallback.host", "")
	v.SetDefault("vision.fallback.port", 0)
	v.SetDefault("vision.fallback.timeout_secs", 120)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@ledgerlens.local")
	v.SetDefault("email.from_name", "LedgerLens")
	v.SetDefault("email.review_address", "")

	// Auth defaults
	v.SetDefault("auth.api_key", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "LEDGERLENS_SERVER_PORT",
		"server.read_timeout":  "LEDGERLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout": "LEDGERLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":   "LEDGERLENS_SERVER_ENVIRONMENT",
		"db.host":              "LEDGERLENS_DB_HOST",
		"db.port":              "LEDGERLENS_DB_PORT",
		"db.user":              "LEDGERLENS_DB_USER",
		"db.password":          "LEDGERLENS_DB_PASSWORD",
		"db.name":              "LEDGERLENS_DB_NAME",
		"db.sslmode":           "LEDGERLENS_DB_SSLMODE",
		"db.max_open":          "LEDGERLENS_DB_MAX_OPEN",
		"db.max_idle":          "LEDGERLENS_DB_MAX_IDLE",

		"s3.region":            "LEDGERLENS_S3_REGION",
		"s3.bucket":            "LEDGERLENS_S3_BUCKET",
		"s3.endpoint":          "LEDGERLENS_S3_ENDPOINT",
		"s3.access_key":        "LEDGERLENS_S3_ACCESS_KEY",
		"s3.secret_key":        "LEDGERLENS_S3_SECRET_KEY",
		"s3.presign_expiry":    "LEDGERLENS_S3_PRESIGN_EXPIRY",
		"log.level":            "LEDGERLENS_LOG_LEVEL",
		"log.format":           "LEDGERLENS_LOG_FORMAT",
		"cors.allowed_origins": "LEDGERLENS_CORS_ALLOWED_ORIGINS",

		"upload.max_file_size_mb":       "LEDGERLENS_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.allowed_extensions":     "LEDGERLENS_UPLOAD_ALLOWED_EXTENSIONS",
		"prompts.file":                  "LEDGERLENS_PROMPTS_FILE",
		"pricing.cache_ttl":             "LEDGERLENS_PRICING_CACHE_TTL",
		"pricing.refresh_interval_secs": "LEDGERLENS_PRICING_REFRESH_INTERVAL_SECS",

		"vision.provider":              "LEDGERLENS_VISION_PROVIDER",
		"vision.api_key":               "LEDGERLENS_VISION_API_KEY",
		"vision.model":                 "LEDGERLENS_VISION_MODEL",
		"vision.base_url":              "LEDGERLENS_VISION_BASE_URL",
		"vision.host":                  "LEDGERLENS_VISION_HOST",
		"vision.port":                  "LEDGERLENS_VISION_PORT",
		"vision.timeout_secs":          "LEDGERLENS_VISION_TIMEOUT_SECS",
		"vision.fallback.provider":     "LEDGERLENS_VISION_FALLBACK_PROVIDER",
		"vision.fallback.api_key":      "LEDGERLENS_VISION_FALLBACK_API_KEY",
		"vision.fallback.model":        "LEDGERLENS_VISION_FALLBACK_MODEL",
		"vision.fallback.base_url":     "LEDGERLENS_VISION_FALLBACK_BASE_URL",
		"vision.fallback.host":         "LEDGERLENS_VISION_FALLBACK_HOST",
		"vision.fallback.port":         "LEDGERLENS_VISION_FALLBACK_PORT",
		"vision.fallback.timeout_secs": "LEDGERLENS_VISION_FALLBACK_TIMEOUT_SECS",

		"email.provider":       "LEDGERLENS_EMAIL_PROVIDER",
		"email.region":         "LEDGERLENS_EMAIL_REGION",
		"email.from_address":   "LEDGERLENS_EMAIL_FROM_ADDRESS",
		"email.from_name":      "LEDGERLENS_EMAIL_FROM_NAME",
		"email.review_address": "LEDGERLENS_EMAIL_REVIEW_ADDRESS",
		"auth.api_key":         "LEDGERLENS_AUTH_API_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LEDGERLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LEDGERLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("cors.allowed_origins")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:     v.GetInt64("upload.max_file_size_mb"),
		AllowedExtensions: splitAndTrim(v.GetString("upload.allowed_extensions")),
	}
	cfg.Prompts = PromptsConfig{
		File: v.GetString("prompts.file"),
	}
	cfg.Pricing = PricingConfig{
		CacheTTL:            v.GetDuration("pricing.cache_ttl"),
		RefreshIntervalSecs: v.GetInt("pricing.refresh_interval_secs"),
	}

	cfg.Vision = VisionConfig{
		Provider:    v.GetString("vision.provider"),
		APIKey:      v.GetString("vision.api_key"),
		Model:       v.GetString("vision.model"),
		BaseURL:     v.GetString("vision.base_url"),
		Host:        v.GetString("vision.host"),
		Port:        v.GetInt("vision.port"),
		TimeoutSecs: v.GetInt("vision.timeout_secs"),
		Fallback: VisionProviderConfig{
			Provider:    v.GetString("vision.fallback.provider"),
			APIKey:      v.GetString("vision.fallback.api_key"),
			Model:       v.GetString("vision.fallback.model"),
			BaseURL:     v.GetString("vision.fallback.base_url"),
			Host:        v.GetString("vision.fallback.host"),
			Port:        v.GetInt("vision.fallback.port"),
			TimeoutSecs: v.GetInt("vision.fallback.timeout_secs"),
		},
	}

	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		ReviewAddress: v.GetString("email.review_address"),
	}

	cfg.Auth = AuthConfig{
		APIKey: v.GetString("auth.api_key"),
	}

	return cfg, nil
}

// splitAndTrim parses a comma-separated string into non-empty trimmed parts.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
