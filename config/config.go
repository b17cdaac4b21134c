package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Environment keys
const (
	EnvSessionSecret     = "SESSION_SECRET"
	EnvDatabaseURL       = "MYSQL_CONNECTION_STRING"
	EnvDBDialect         = "DB_DIALECT"
	EnvDBPool            = "DB_POOL"
	EnvDBIdlePool        = "DB_IDLE_POOL"
	EnvRedisUrl          = "REDIS_URL"
	EnvPort              = "PORT"
	EnvAdminName         = "ADMIN_NAME"
	EnvAdminSwatch       = "ADMIN_SWATCH"
	EnvFlaskAdminSwatch  = "FLASK_ADMIN_SWATCH"
	EnvAdminTemplateMode = "ADMIN_TEMPLATE_MODE"
	EnvAdminBaseTemplate = "ADMIN_BASE_TEMPLATE"
	EnvAdminUsername     = "ADMIN_USERNAME"
	EnvAdminPassword     = "ADMIN_PASSWORD"
	EnvKMSKeyARN         = "KMS_ENCRYPTION_KEY_ARN"
	EnvAWSRegion         = "AWS_REGION"
	EnvCookieSecure      = "COOKIE_SECURE"
	EnvSessionTTL        = "SESSION_TTL"
)

// Config is the application configuration. It is built once by Load and
// handed to whatever needs it.
type Config struct {
	SessionSecret string
	Port          string
	RedisURL      string
	CookieSecure  bool
	SessionTTL    time.Duration
	Database      DBConfig
	Admin         AdminConfig
	KMS           KMSConfig
}

// AdminConfig configures the admin panel.
type AdminConfig struct {
	Name         string
	Swatch       string
	TemplateMode string
	BaseTemplate string
	Username     string
	Password     string
}

// Protected reports whether basic auth credentials were configured.
func (a AdminConfig) Protected() bool {
	return a.Username != "" && a.Password != ""
}

// KMSConfig enables AWS KMS for private key encryption when KeyARN is set.
type KMSConfig struct {
	KeyARN string
	Region string
}

func (k KMSConfig) Enabled() bool {
	return k.KeyARN != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvDBDialect, DialectMySQL)
	v.SetDefault(EnvDBIdlePool, 2)
	v.SetDefault(EnvRedisUrl, "redis://localhost:6379/0")
	v.SetDefault(EnvPort, "8080")
	v.SetDefault(EnvAdminName, "offen admin")
	v.SetDefault(EnvAdminTemplateMode, "bootstrap3")
	v.SetDefault(EnvAdminBaseTemplate, "index.html")
	v.SetDefault(EnvSessionTTL, 24*time.Hour)

	swatch := v.GetString(EnvAdminSwatch)
	if swatch == "" {
		swatch = v.GetString(EnvFlaskAdminSwatch)
	}
	if swatch == "" {
		swatch = "flatly"
	}

	cfg := &Config{
		SessionSecret: v.GetString(EnvSessionSecret),
		Port:          v.GetString(EnvPort),
		RedisURL:      v.GetString(EnvRedisUrl),
		CookieSecure:  v.GetBool(EnvCookieSecure),
		SessionTTL:    v.GetDuration(EnvSessionTTL),
		Database: DBConfig{
			URL:      v.GetString(EnvDatabaseURL),
			Dialect:  v.GetString(EnvDBDialect),
			Pool:     v.GetInt(EnvDBPool),
			IdlePool: v.GetInt(EnvDBIdlePool),
		},
		Admin: AdminConfig{
			Name:         v.GetString(EnvAdminName),
			Swatch:       swatch,
			TemplateMode: v.GetString(EnvAdminTemplateMode),
			BaseTemplate: v.GetString(EnvAdminBaseTemplate),
			Username:     v.GetString(EnvAdminUsername),
			Password:     v.GetString(EnvAdminPassword),
		},
		KMS: KMSConfig{
			KeyARN: v.GetString(EnvKMSKeyARN),
			Region: v.GetString(EnvAWSRegion),
		},
	}

	if cfg.SessionSecret == "" {
		return nil, errors.Errorf("config: %s is not set", EnvSessionSecret)
	}
	if cfg.Database.URL == "" {
		return nil, errors.Errorf("config: %s is not set", EnvDatabaseURL)
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.Errorf("config: %s must be positive", EnvSessionTTL)
	}
	if _, err := cfg.Database.DSN(); err != nil {
		return nil, err
	}

	return cfg, nil
}
