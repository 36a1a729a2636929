// Package config loads storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	EnvAppPort          = "APP_PORT"
	EnvAppEnv           = "APP_ENV"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvDBDriver         = "DB_DRIVER"
	EnvDatabaseDSN      = "DATABASE_DSN"
	EnvMongoURI         = "MONGODB_URI"
	EnvMongoDatabase    = "MONGODB_DATABASE"
	EnvCartStore        = "CART_STORE"
	EnvCartKeyPrefix    = "CART_KEY_PREFIX"
	EnvCartTTL          = "CART_TTL"
	EnvCartEnforceStock = "CART_ENFORCE_STOCK"
	EnvCartMaxQuantity  = "CART_MAX_LINE_QUANTITY"
	EnvTaxRate          = "TAX_RATE"
	EnvRedisURL         = "REDIS_URL"
	EnvRabbitMQURL      = "RABBITMQ_URL"
	EnvPaymentDelay     = "PAYMENT_DELAY"
	EnvLocale           = "LOCALE"
	EnvSeedDemoProducts = "SEED_DEMO_PRODUCTS"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Cart store backends.
const (
	CartStoreMemory = "memory"
	CartStoreDB     = "db"
	CartStoreRedis  = "redis"
)

// Config is the storefront configuration loaded from the environment.
type Config struct {
	App      AppConfig
	Log      LogConfig
	DB       DBConfig
	Cart     CartConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Checkout CheckoutConfig
}

type AppConfig struct {
	Port   string
	Env    string
	Locale string
	// SeedDemoProducts fills an empty catalog at startup.
	SeedDemoProducts bool
}

type LogConfig struct {
	Level  string
	Format string
}

type DBConfig struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

type CartConfig struct {
	Store           string
	KeyPrefix       string
	TTL             time.Duration
	EnforceStock    bool
	MaxLineQuantity int
	TaxRate         decimal.Decimal
}

type RedisConfig struct {
	URL string
}

// RabbitMQConfig holds the broker URL; an empty URL disables order events.
type RabbitMQConfig struct {
	URL string
}

type CheckoutConfig struct {
	PaymentDelay time.Duration
}

// Load reads a .env file when one exists, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(EnvAppPort, ":8080")
	v.SetDefault(EnvAppEnv, "dev")
	v.SetDefault(EnvLogLevel, "info")
	v.SetDefault(EnvLogFormat, "json")
	v.SetDefault(EnvDBDriver, DriverSQLite)
	v.SetDefault(EnvDatabaseDSN, "file::memory:?cache=shared")
	v.SetDefault(EnvMongoURI, "")
	v.SetDefault(EnvMongoDatabase, "storefront")
	v.SetDefault(EnvCartStore, CartStoreMemory)
	v.SetDefault(EnvCartKeyPrefix, "cart")
	v.SetDefault(EnvCartTTL, "720h")
	v.SetDefault(EnvCartEnforceStock, true)
	v.SetDefault(EnvCartMaxQuantity, 999)
	v.SetDefault(EnvTaxRate, "0.19")
	v.SetDefault(EnvRedisURL, "redis://localhost:6379/0")
	v.SetDefault(EnvRabbitMQURL, "")
	v.SetDefault(EnvPaymentDelay, "0s")
	v.SetDefault(EnvLocale, "es-CL")
	v.SetDefault(EnvSeedDemoProducts, true)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	taxRate, err := decimal.NewFromString(strings.TrimSpace(v.GetString(EnvTaxRate)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvTaxRate, err)
	}
	ttl, err := time.ParseDuration(v.GetString(EnvCartTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvCartTTL, err)
	}
	delay, err := time.ParseDuration(v.GetString(EnvPaymentDelay))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvPaymentDelay, err)
	}

	cfg := &Config{
		App: AppConfig{
			Port:             v.GetString(EnvAppPort),
			Env:              v.GetString(EnvAppEnv),
			Locale:           v.GetString(EnvLocale),
			SeedDemoProducts: v.GetBool(EnvSeedDemoProducts),
		},
		Log: LogConfig{
			Level:  v.GetString(EnvLogLevel),
			Format: strings.ToLower(v.GetString(EnvLogFormat)),
		},
		DB: DBConfig{
			Driver:        strings.ToLower(v.GetString(EnvDBDriver)),
			DSN:           v.GetString(EnvDatabaseDSN),
			MongoURI:      v.GetString(EnvMongoURI),
			MongoDatabase: v.GetString(EnvMongoDatabase),
		},
		Cart: CartConfig{
			Store:           strings.ToLower(v.GetString(EnvCartStore)),
			KeyPrefix:       v.GetString(EnvCartKeyPrefix),
			TTL:             ttl,
			EnforceStock:    v.GetBool(EnvCartEnforceStock),
			MaxLineQuantity: v.GetInt(EnvCartMaxQuantity),
			TaxRate:         taxRate,
		},
		Redis:    RedisConfig{URL: v.GetString(EnvRedisURL)},
		RabbitMQ: RabbitMQConfig{URL: v.GetString(EnvRabbitMQURL)},
		Checkout: CheckoutConfig{PaymentDelay: delay},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, fmt.Errorf("%s is required for driver %s", EnvDatabaseDSN, c.DB.Driver))
		}
	case DriverMongo:
		if c.DB.MongoURI == "" {
			errs = append(errs, fmt.Errorf("%s is required for driver %s", EnvMongoURI, DriverMongo))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported driver %q", EnvDBDriver, c.DB.Driver))
	}

	switch c.Cart.Store {
	case CartStoreMemory, CartStoreRedis:
	case CartStoreDB:
		if c.DB.Driver == DriverMongo {
			errs = append(errs, fmt.Errorf("%s=%s needs a SQL %s", EnvCartStore, CartStoreDB, EnvDBDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported store %q", EnvCartStore, c.Cart.Store))
	}

	if c.Cart.Store == CartStoreRedis && c.Redis.URL == "" {
		errs = append(errs, fmt.Errorf("%s is required for %s=%s", EnvRedisURL, EnvCartStore, CartStoreRedis))
	}
	if strings.TrimSpace(c.Cart.KeyPrefix) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", EnvCartKeyPrefix))
	}
	if c.Cart.TaxRate.IsNegative() {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvTaxRate))
	}
	if c.Cart.MaxLineQuantity <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvCartMaxQuantity))
	}
	if c.Cart.TTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvCartTTL))
	}
	if c.Checkout.PaymentDelay < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvPaymentDelay))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported format %q", EnvLogFormat, c.Log.Format))
	}

	return errors.Join(errs...)
}

// UsesSQL reports whether the catalog lives in a GORM database.
func (c *Config) UsesSQL() bool {
	return c.DB.Driver == DriverSQLite || c.DB.Driver == DriverPostgres
}
