// Package config loads application configuration from environment variables
// (optionally a .env file) via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StockPolicy controls how outbound movements react to insufficient stock.
type StockPolicy string

const (
	// StockPolicyBlock rejects outbound movements that would drive a
	// snapshot negative.
	StockPolicyBlock StockPolicy = "block"
	// StockPolicyAllowNegative records the movement and logs a warning.
	StockPolicyAllowNegative StockPolicy = "allow-negative"
)

// Config groups the application configuration.
type Config struct {
	App     AppConfig
	DB      DBConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Ledger  LedgerConfig
	Reports ReportsConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// IsDevelopment reports whether the app runs in development mode.
func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret string
	Issuer string
}

// LedgerConfig holds stock ledger behavior settings.
type LedgerConfig struct {
	StockPolicy     StockPolicy
	DefaultPageSize int
}

// ReportsConfig holds aggregation defaults.
type ReportsConfig struct {
	DefaultPeriod string // all, day, week, month, year
}

// Load reads configuration from environment variables, with an optional .env
// file as fallback. Environment variables take priority.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxConns:        int32(v.GetInt("DB_MAX_CONNS")),
			MinConns:        int32(v.GetInt("DB_MIN_CONNS")),
			MaxConnLifetime: v.GetDuration("DB_MAX_CONN_LIFETIME"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("APP_HOST"),
			Port: v.GetInt("APP_PORT"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Ledger: LedgerConfig{
			StockPolicy:     StockPolicy(v.GetString("STOCK_POLICY")),
			DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		},
		Reports: ReportsConfig{
			DefaultPeriod: v.GetString("DEFAULT_AGG_PERIOD"),
		},
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Ledger.StockPolicy {
	case StockPolicyBlock, StockPolicyAllowNegative:
	default:
		return fmt.Errorf("STOCK_POLICY must be %q or %q, got %q",
			StockPolicyBlock, StockPolicyAllowNegative, c.Ledger.StockPolicy)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "salemanagement-api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("JWT_ISSUER", "salemanagement")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_MAX_CONN_LIFETIME", time.Hour)
	v.SetDefault("STOCK_POLICY", string(StockPolicyBlock))
	v.SetDefault("DEFAULT_PAGE_SIZE", 50)
	v.SetDefault("DEFAULT_AGG_PERIOD", "month")
}
