package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
)

const (
	EnvPrefix      = "EDEXTEMP"
	configName     = "edextemp"
	configFormat   = "yaml"
	minSecretBytes = 32

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Print    PrintConfig    `mapstructure:"print"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  logger.Config  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	SecretKey    string `mapstructure:"secret_key"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	TimeZone     string `mapstructure:"time_zone"`
	Environment  string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type SessionConfig struct {
	Store         string        `mapstructure:"store"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PrintConfig struct {
	InlineImages   bool          `mapstructure:"inline_images"`
	QRBaseURL      string        `mapstructure:"qr_base_url"`
	BarcodeBaseURL string        `mapstructure:"barcode_base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	Language       string        `mapstructure:"language"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads edextemp.yaml from configPath when present and applies
// EDEXTEMP_* environment overrides, e.g. EDEXTEMP_SERVER_PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType(configFormat)
	if strings.TrimSpace(configPath) != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.secret_key", "")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.time_zone", "Asia/Bangkok")
	v.SetDefault("server.environment", "production")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/edextemp.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.idle_timeout", time.Hour)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("session.token_ttl", 12*time.Hour)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "edextemp:session:")

	v.SetDefault("print.inline_images", false)
	v.SetDefault("print.qr_base_url", "https://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("print.barcode_base_url", "https://barcodeapi.org/api/128/")
	v.SetDefault("print.fetch_timeout", 5*time.Second)
	v.SetDefault("print.language", "th")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.stdout", true)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
}

// Validate checks what every command needs. The signing secret is only
// checked by ValidateServer.
func (cfg *Config) Validate() error {
	if _, err := time.LoadLocation(cfg.Server.TimeZone); err != nil {
		return fmt.Errorf("invalid server.time_zone %q: %w", cfg.Server.TimeZone, err)
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.Database.Path) == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	switch cfg.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return errors.New("redis.addr is required for the redis session store")
		}
	default:
		return fmt.Errorf("unsupported session.store %q", cfg.Session.Store)
	}

	if cfg.Session.IdleTimeout <= 0 {
		return errors.New("session.idle_timeout must be positive")
	}
	if cfg.Session.TokenTTL < cfg.Session.IdleTimeout {
		return errors.New("session.token_ttl must not be shorter than session.idle_timeout")
	}
	return nil
}

// ValidateServer checks settings only the HTTP server uses.
func (cfg *Config) ValidateServer() error {
	return validateSecretKey(cfg.Server.SecretKey)
}

// Location returns the configured time zone. Validate guarantees it loads.
func (cfg *Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Server.TimeZone)
	if err != nil {
		return time.UTC
	}
	return location
}

func (cfg *Config) IsDevelopment() bool {
	return strings.EqualFold(cfg.Server.Environment, "development")
}

func validateSecretKey(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return errors.New("server.secret_key is required")
	}
	if _, insecure := insecureSecretPlaceholders[strings.ToLower(trimmed)]; insecure {
		return errors.New("server.secret_key uses an insecure placeholder")
	}
	if len(trimmed) < minSecretBytes {
		return fmt.Errorf("server.secret_key must be at least %d characters", minSecretBytes)
	}
	return nil
}
