// Package config reads the cart settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/currency"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

type Config struct {
	StorageDriver  string        `env:"CART_STORAGE_DRIVER"  envDefault:"sqlite"`
	StorageKey     string        `env:"CART_STORAGE_KEY"     envDefault:"cart"`
	StorageTimeout time.Duration `env:"CART_STORAGE_TIMEOUT" envDefault:"2s"`

	SQLitePath  string        `env:"CART_SQLITE_PATH"  envDefault:"cart.db"`
	PostgresDSN string        `env:"CART_POSTGRES_DSN"`
	MySQLDSN    string        `env:"CART_MYSQL_DSN"`
	RedisAddr   string        `env:"CART_REDIS_ADDR"   envDefault:"localhost:6379"`
	RedisTTL    time.Duration `env:"CART_REDIS_TTL"    envDefault:"0s"`

	CurrencyCode string `env:"CART_CURRENCY"  envDefault:"USD"`
	HTTPAddr     string `env:"CART_HTTP_ADDR" envDefault:":8080"`
	LogLevel     string `env:"CART_LOG_LEVEL" envDefault:"info"`

	currency currency.Unit
	level    zapcore.Level
}

// Currency is the unit totals are displayed in.
func (c Config) Currency() currency.Unit {
	return c.currency
}

func (c Config) Level() zapcore.Level {
	return c.level
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("CART_SQLITE_PATH is required for driver %s", c.StorageDriver)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("CART_POSTGRES_DSN is required for driver %s", c.StorageDriver)
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("CART_MYSQL_DSN is required for driver %s", c.StorageDriver)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("CART_REDIS_ADDR is required for driver %s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StorageDriver)
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("CART_STORAGE_KEY is empty")
	}

	unit, err := currency.ParseISO(c.CurrencyCode)
	if err != nil {
		return fmt.Errorf("currency[%s] is not valid: %w", c.CurrencyCode, err)
	}
	c.currency = unit

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel: %w", err)
	}
	c.level = level

	return nil
}
