package config

import (
	"fmt"
)

// Default configuration values.
const (
	defaultServiceName  = "insights-api"
	defaultServicePort  = 8094
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "insights"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"
	defaultContentDir   = "content"
	defaultRedisAddr    = ""
	defaultQueueKey     = "crm:lead-sync"
	defaultTokenTTLMin  = 15
	defaultSignExpiryM  = 15

	defaultLeadPerMinute     = 5
	defaultDownloadPerMinute = 10
	defaultWindowSeconds     = 60
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Content   ContentConfig   `yaml:"content"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Mail      MailConfig      `yaml:"mail"`
	CRM       CRMConfig       `yaml:"crm"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	Port            int    `env:"INSIGHTS_API_PORT" yaml:"port"`
	Debug           bool   `env:"APP_DEBUG"         yaml:"debug"`
	TokenTTLMinutes int    `env:"DOWNLOAD_TOKEN_TTL_MINUTES" yaml:"token_ttl_minutes"`
	MediaKitKey     string `env:"MEDIA_KIT_OBJECT_KEY"       yaml:"media_kit_key"`
}

// ContentConfig locates the static content indexes.
type ContentConfig struct {
	IndexDir string `env:"CONTENT_INDEX_DIR" yaml:"index_dir"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// URL returns the postgres:// form of the DSN, used by migrations.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis configuration. An empty Addr disables both the rate
// limiter and the CRM queue.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
}

// Enabled reports whether a Redis backend is configured.
func (r *RedisConfig) Enabled() bool { return r.Addr != "" }

// StorageConfig holds object-store (R2/S3-compatible) configuration.
// All fields empty disables signed downloads.
type StorageConfig struct {
	Endpoint        string `env:"STORAGE_ENDPOINT"          yaml:"endpoint"`
	Region          string `env:"STORAGE_REGION"            yaml:"region"`
	Bucket          string `env:"STORAGE_BUCKET"            yaml:"bucket"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"     yaml:"access_key_id"`
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	SignExpiryMin   int    `yaml:"sign_expiry_minutes"`
}

// Enabled reports whether the object store is configured.
func (s *StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != "" && s.AccessKeyID != ""
}

// MailConfig holds the internal-notification mail API configuration.
type MailConfig struct {
	Endpoint string `env:"MAIL_API_ENDPOINT" yaml:"endpoint"`
	APIKey   string `env:"MAIL_API_KEY"      yaml:"api_key"`
	From     string `env:"MAIL_FROM"         yaml:"from"`
	To       string `env:"MAIL_TO"           yaml:"to"`
}

// Enabled reports whether notification mail is configured.
func (m *MailConfig) Enabled() bool { return m.Endpoint != "" && m.To != "" }

// CRMConfig holds the CRM sync queue configuration.
type CRMConfig struct {
	QueueKey string `env:"CRM_QUEUE_KEY" yaml:"queue_key"`
}

// RateLimitConfig holds the per-policy sliding-window caps.
type RateLimitConfig struct {
	LeadPerMinute     int `yaml:"lead_per_minute"`
	DownloadPerMinute int `yaml:"download_per_minute"`
	WindowSeconds     int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	svc := &cfg.Service
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.TokenTTLMinutes == 0 {
		svc.TokenTTLMinutes = defaultTokenTTLMin
	}

	if cfg.Content.IndexDir == "" {
		cfg.Content.IndexDir = defaultContentDir
	}

	db := &cfg.Database
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}

	if cfg.Storage.SignExpiryMin == 0 {
		cfg.Storage.SignExpiryMin = defaultSignExpiryM
	}

	if cfg.CRM.QueueKey == "" {
		cfg.CRM.QueueKey = defaultQueueKey
	}

	rl := &cfg.RateLimit
	if rl.LeadPerMinute == 0 {
		rl.LeadPerMinute = defaultLeadPerMinute
	}
	if rl.DownloadPerMinute == 0 {
		rl.DownloadPerMinute = defaultDownloadPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: "must be between 1 and 65535"}
	}
	if c.Service.TokenTTLMinutes < 1 {
		return &ValidationError{Field: "service.token_ttl_minutes", Message: "must be positive"}
	}
	if c.RateLimit.WindowSeconds < 1 {
		return &ValidationError{Field: "rate_limit.window_seconds", Message: "must be positive"}
	}
	return nil
}
