package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	CatalogLocal = "local"
	CatalogAPI   = "api"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Cart store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBDSN        string `env:"DB_DSN" envDefault:"phonestore.db"` // sqlite file in project root
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass    string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	CartTTLHours int    `env:"CART_TTL_HOURS" envDefault:"720"`
	CartKey      string `env:"CART_KEY" envDefault:"inditex_cart"`

	// Catalog provider
	CatalogSource  string        `env:"CATALOG_SOURCE" envDefault:"local"`
	CatalogAPIURL  string        `env:"CATALOG_API_URL" envDefault:""`
	CatalogAPIKey  string        `env:"CATALOG_API_KEY" envDefault:""`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`

	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"./web/templates"`
	LogFile      string `env:"LOG_FILE" envDefault:"./phonestore.log"`
}

// CartTTL is how long an idle cart survives in backends that expire keys.
func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s STORE_BACKEND=%s DB_DSN=%s CATALOG_SOURCE=%s LOG_FILE=%s",
		cfg.Port, cfg.StoreBackend, cfg.DBDSN, cfg.CatalogSource, cfg.LogFile)
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.CatalogSource {
	case CatalogLocal:
	case CatalogAPI:
		if c.CatalogAPIURL == "" {
			return fmt.Errorf("CATALOG_API_URL is required when CATALOG_SOURCE=api")
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.CartKey == "" {
		return fmt.Errorf("CART_KEY must not be empty")
	}
	if c.CartTTLHours < 0 {
		return fmt.Errorf("invalid CART_TTL_HOURS: %d", c.CartTTLHours)
	}
	return nil
}
