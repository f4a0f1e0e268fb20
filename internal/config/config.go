package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Cart     CartConfig
	Coupon   CouponConfig
	Payment  PaymentConfig
	S3       S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// StoreConfig selects where cart snapshots are persisted.
type StoreConfig struct {
	Backend    string // memory, redis, postgres or mongo
	TTLSeconds int    // redis only, 0 keeps keys forever
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// CartConfig holds the cart pricing rules and in-memory retention.
type CartConfig struct {
	KeyPrefix            string
	FreeShippingAbove    decimal.Decimal
	FlatShippingFee      decimal.Decimal
	IdleTTLSeconds       int // 0 keeps carts in memory until restart
	EvictIntervalSeconds int
}

// CouponConfig holds coupon service configuration.
type CouponConfig struct {
	LatencyMS int
	Files     []string // optional gzipped policy files, local or S3 keys
}

// PaymentConfig holds simulated gateway configuration.
type PaymentConfig struct {
	LatencyMS       int
	StatusLatencyMS int
}

// S3Config holds AWS S3 configuration for coupon policy files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "coupons/")
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bijukart"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Store: StoreConfig{
			Backend:    getEnv("STORE_BACKEND", "postgres"),
			TTLSeconds: getEnvAsInt("STORE_TTL_SECONDS", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "bijukart"),
			Collection: getEnv("MONGO_COLLECTION", "cart_snapshots"),
		},
		Cart: CartConfig{
			KeyPrefix:            getEnv("CART_KEY_PREFIX", "cart"),
			FreeShippingAbove:    getEnvAsDecimal("CART_FREE_SHIPPING_ABOVE", decimal.RequireFromString("200.00")),
			FlatShippingFee:      getEnvAsDecimal("CART_SHIPPING_FEE", decimal.RequireFromString("15.90")),
			IdleTTLSeconds:       getEnvAsInt("CART_IDLE_TTL_SECONDS", 1800),
			EvictIntervalSeconds: getEnvAsInt("CART_EVICT_INTERVAL_SECONDS", 60),
		},
		Coupon: CouponConfig{
			LatencyMS: getEnvAsInt("COUPON_LATENCY_MS", 1000),
			Files:     getEnvAsList("COUPON_FILES"),
		},
		Payment: PaymentConfig{
			LatencyMS:       getEnvAsInt("PAYMENT_LATENCY_MS", 1500),
			StatusLatencyMS: getEnvAsInt("PAYMENT_STATUS_LATENCY_MS", 1000),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "coupons/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Server.validate,
		c.Database.validate,
		c.Logger.validate,
		c.validateStore,
		c.validateCommerce,
		c.S3.validate,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	if c.Auth.APIKey == "" {
		return errors.New("API key is required")
	}

	return nil
}

func (c *ServerConfig) validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.New("database host is required")
	case !validPort(c.Port):
		return fmt.Errorf("invalid database port: %d", c.Port)
	case c.User == "":
		return errors.New("database user is required")
	case c.Database == "":
		return errors.New("database name is required")
	case c.MinConnections < 1 || c.MaxConnections < 1:
		return fmt.Errorf("database pool needs at least one connection (min=%d, max=%d)", c.MinConnections, c.MaxConnections)
	case c.MinConnections > c.MaxConnections:
		return fmt.Errorf("database min connections (%d) cannot exceed max connections (%d)", c.MinConnections, c.MaxConnections)
	}
	return nil
}

func (c *LoggerConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "memory", "postgres":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis address is required when the redis store is selected")
		}
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return errors.New("mongo uri, database and collection are required when the mongo store is selected")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, redis, postgres, or mongo)", c.Store.Backend)
	}

	if c.Store.TTLSeconds < 0 {
		return errors.New("store TTL cannot be negative")
	}
	return nil
}

func (c *Config) validateCommerce() error {
	switch {
	case c.Cart.KeyPrefix == "":
		return errors.New("cart key prefix is required")
	case c.Cart.FreeShippingAbove.IsNegative() || c.Cart.FlatShippingFee.IsNegative():
		return errors.New("cart shipping amounts cannot be negative")
	case c.Cart.IdleTTLSeconds < 0:
		return errors.New("cart idle TTL cannot be negative")
	case c.Cart.IdleTTLSeconds > 0 && c.Cart.EvictIntervalSeconds < 1:
		return errors.New("cart eviction interval must be at least one second")
	case c.Coupon.LatencyMS < 0:
		return errors.New("coupon latency cannot be negative")
	case c.Payment.LatencyMS < 0 || c.Payment.StatusLatencyMS < 0:
		return errors.New("payment latency cannot be negative")
	}
	return nil
}

func (c *S3Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Bucket == "" {
		return errors.New("S3 bucket is required when S3 is enabled")
	}
	if c.Region == "" {
		return errors.New("S3 region is required when S3 is enabled")
	}
	return nil
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTL returns the snapshot expiry as a duration.
func (c *StoreConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// IdleTTL returns how long an unused cart stays in memory.
func (c *CartConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLSeconds) * time.Second
}

// EvictInterval returns the period between idle cart sweeps.
func (c *CartConfig) EvictInterval() time.Duration {
	return time.Duration(c.EvictIntervalSeconds) * time.Second
}

// Latency returns the simulated coupon validation delay.
func (c *CouponConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMS) * time.Millisecond
}

// Latency returns the simulated gateway delay.
func (c *PaymentConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMS) * time.Millisecond
}

// StatusLatency returns the simulated transaction status lookup delay.
func (c *PaymentConfig) StatusLatency() time.Duration {
	return time.Duration(c.StatusLatencyMS) * time.Millisecond
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDecimal retrieves an environment variable as a decimal or returns a default value.
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a slice.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
