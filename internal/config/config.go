package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	Env             string        `mapstructure:"env" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" validate:"gt=0"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	StatsTTL time.Duration `mapstructure:"stats_ttl" validate:"gt=0"`
}

type SchedulerConfig struct {
	Spec string `mapstructure:"spec" validate:"required"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// bindings maps every config key to the environment variables it may be
// read from, in priority order.
var bindings = map[string][]string{
	"server.host":                {"SERVER_HOST"},
	"server.port":                {"SERVER_PORT", "PORT"},
	"server.env":                 {"ENV", "APP_ENV", "FLASK_ENV"},
	"server.read_timeout":        {"SERVER_READ_TIMEOUT"},
	"server.write_timeout":       {"SERVER_WRITE_TIMEOUT"},
	"server.shutdown_timeout":    {"SERVER_SHUTDOWN_TIMEOUT"},
	"database.url":               {"DATABASE_URL"},
	"database.max_open_conns":    {"DB_POOL_SIZE"},
	"database.max_idle_conns":    {"DB_MAX_IDLE_CONNS"},
	"database.conn_max_lifetime": {"DB_CONN_MAX_LIFETIME"},
	"database.query_timeout":     {"DB_QUERY_TIMEOUT"},
	"redis.url":                  {"REDIS_URL"},
	"redis.stats_ttl":            {"STATS_CACHE_TTL"},
	"scheduler.spec":             {"STATS_REFRESH_SPEC"},
	"logging.level":              {"LOG_LEVEL"},
	"logging.format":             {"LOG_FORMAT"},
	"health.timeout":             {"HEALTH_CHECK_TIMEOUT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.query_timeout", "5s")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.stats_ttl", "30s")
	v.SetDefault("scheduler.spec", "@every 1m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "")
	v.SetDefault("health.timeout", "2s")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("unable to bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Server.Env = strings.ToLower(strings.TrimSpace(config.Server.Env))
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must not exceed DB_POOL_SIZE")
	}

	if _, err := url.Parse(c.Database.DSN()); err != nil {
		return fmt.Errorf("DATABASE_URL must be a valid URL: %w", err)
	}

	if c.Redis.URL != "" {
		if _, err := url.Parse(c.Redis.URL); err != nil {
			return fmt.Errorf("REDIS_URL must be a valid URL: %w", err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogFormat resolves the log format, falling back to json in production
// and text elsewhere.
func (c *Config) LogFormat() string {
	if c.Logging.Format != "" {
		return c.Logging.Format
	}
	if c.IsProduction() {
		return "json"
	}
	return "text"
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.URL != ""
}

// DSN returns the postgres connection string. SQLAlchemy style URLs
// (postgresql+psycopg2://...) are rewritten to the plain postgres scheme.
func (d DatabaseConfig) DSN() string {
	dsn := strings.TrimSpace(d.URL)
	scheme, rest, found := strings.Cut(dsn, "://")
	if !found {
		return dsn
	}
	if base, _, hasDriver := strings.Cut(scheme, "+"); hasDriver {
		scheme = base
	}
	if scheme == "postgresql" {
		scheme = "postgres"
	}
	return scheme + "://" + rest
}
