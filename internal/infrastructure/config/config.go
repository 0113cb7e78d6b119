package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	ERP      ERPConfig
	Cache    CacheConfig
	Sync     SyncConfig
	Log      LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds mirror database connection settings
type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file for the sqlite driver
	Path string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ERPConfig holds the connection settings for the upstream ERP
type ERPConfig struct {
	BaseURL     string
	CSVFeedURL  string
	Username    string
	Password    string
	Timeout     time.Duration // per-call timeout
	BulkTimeout time.Duration // shorter timeout for bulk list reads
	MaxAttempts int           // total attempts for retryable failures
	BackoffBase time.Duration // first retry delay, doubles per attempt
}

// CacheConfig holds read-through cache settings
type CacheConfig struct {
	Backend string        // memory or redis
	TTL     time.Duration // staleness window for catalog display reads
}

// SyncConfig holds catalog reconciliation settings
type SyncConfig struct {
	Enabled    bool
	Interval   time.Duration // period of the background reconcile job
	ImportsDir string        // archive directory for downloaded CSV feeds
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g. STOREFRONT_ERP_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("database.driver"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
			Path:     v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		ERP: ERPConfig{
			BaseURL:     v.GetString("erp.base_url"),
			CSVFeedURL:  v.GetString("erp.csv_feed_url"),
			Username:    v.GetString("erp.username"),
			Password:    v.GetString("erp.password"),
			Timeout:     v.GetDuration("erp.timeout"),
			BulkTimeout: v.GetDuration("erp.bulk_timeout"),
			MaxAttempts: v.GetInt("erp.max_attempts"),
			BackoffBase: v.GetDuration("erp.backoff_base"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Sync: SyncConfig{
			Enabled:    v.GetBool("sync.enabled"),
			Interval:   v.GetDuration("sync.interval"),
			ImportsDir: v.GetString("sync.imports_dir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "storefront.db"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.ERP.BaseURL == "" {
		cfg.ERP.BaseURL = "http://localhost:4004/odata/v4/simple-erp"
	}
	if cfg.ERP.CSVFeedURL == "" {
		cfg.ERP.CSVFeedURL = "http://localhost:4004/rest/api/getProducts"
	}
	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 10 * time.Second
	}
	if cfg.ERP.BulkTimeout == 0 {
		cfg.ERP.BulkTimeout = 5 * time.Second
	}
	if cfg.ERP.MaxAttempts == 0 {
		cfg.ERP.MaxAttempts = 3
	}
	if cfg.ERP.BackoffBase == 0 {
		cfg.ERP.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 45 * time.Second
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Sync.ImportsDir == "" {
		cfg.Sync.ImportsDir = "erp_imports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if _, err := url.Parse(c.ERP.BaseURL); err != nil {
		return fmt.Errorf("erp.base_url is not a valid URL: %w", err)
	}

	if c.App.Env == "production" {
		if c.ERP.Username == "" || c.ERP.Password == "" {
			return fmt.Errorf("erp.username and erp.password are required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
