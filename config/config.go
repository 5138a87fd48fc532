// Package config loads application configuration via Viper, from environment
// variables and optionally a config.env file. Environment variables win.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	Trading TradingConfig
}

// AppConfig is general application configuration.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// HTTPConfig is the HTTP server configuration.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig is the SQLite database configuration.
type DBConfig struct {
	Path string // file path, or ":memory:" for a throwaway database
}

// TradingConfig carries business toggles.
type TradingConfig struct {
	// AllowNegativeStock lets sales commit even when they drive an item's
	// stock below zero. Off by default; some distributors sell fish that is
	// on the truck before the purchase is keyed in.
	AllowNegativeStock bool
}

// Load reads configuration from environment variables (and optionally a
// config.env file in the working directory). Expected names: APP_ENV,
// HTTP_PORT, DB_PATH, ALLOW_NEGATIVE_STOCK, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // missing file is fine

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "fishplus-distributor")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("DB_PATH", "fishplus.db")
	v.SetDefault("ALLOW_NEGATIVE_STOCK", false)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Path: v.GetString("DB_PATH"),
		},
		Trading: TradingConfig{
			AllowNegativeStock: v.GetBool("ALLOW_NEGATIVE_STOCK"),
		},
	}
	return cfg, nil
}
