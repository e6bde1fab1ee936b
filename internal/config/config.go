package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Logger        LoggerConfig
	Auth          AuthConfig
	S3            S3Config
	Jurisdictions JurisdictionConfig
	Dynamo        DynamoConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Pricing       PricingConfig
	RateLimit     RateLimitConfig
	Persistence   PersistenceConfig
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
	// MaxConnIdleTime and HealthCheckPeriod are handed to pgxpool as is.
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	// ConnectRetries is how many times the startup ping is retried.
	ConnectRetries int
	Migrate        bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration. At least one of APIKey and
// JWTSecret must be set.
type AuthConfig struct {
	APIKey    string
	JWTSecret string
	JWTIssuer string
}

// S3Config holds AWS S3 configuration for jurisdiction table files.
type S3Config struct {
	Enabled  bool
	Bucket   string
	Region   string
	Prefix   string // Path prefix within bucket (e.g., "jurisdictions/")
	Endpoint string
}

// JurisdictionConfig lists the shared tax tables, merged in order.
type JurisdictionConfig struct {
	Files          []string
	ReloadInterval time.Duration
}

// DynamoConfig configures the receipt store. When disabled receipts are kept
// in memory.
type DynamoConfig struct {
	Enabled  bool
	Table    string
	Region   string
	Endpoint string
}

// RedisConfig configures the tenant config cache.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig configures receipt event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PricingConfig holds engine-wide pricing defaults.
type PricingConfig struct {
	DefaultFeePct        decimal.Decimal
	DefaultBrandKey      string
	Currency             string
	ReceiptListCap       int
	PendingReceiptTTL    time.Duration
	ExtraSettledStatuses []string
	PortalBaseURL        string
}

// RateLimitConfig configures per-caller request throttling.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// PersistenceConfig tunes store retries and degraded queue draining.
type PersistenceConfig struct {
	MaxRetries    int
	RetryInitial  time.Duration
	CASRetries    int
	FlushInterval time.Duration
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
			Database:        getEnv("DB_NAME", "portalpay"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime:   getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectRetries:    getEnvAsInt("DB_CONNECT_RETRIES", 5),
			Migrate:           getEnvAsBool("DB_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey:    getEnv("API_KEY", ""),
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", ""),
		},
		S3: S3Config{
			Enabled:  getEnvAsBool("S3_ENABLED", false),
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Prefix:   getEnv("S3_PREFIX", "jurisdictions/"),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Jurisdictions: JurisdictionConfig{
			Files:          getEnvAsList("JURISDICTION_FILES", nil),
			ReloadInterval: getEnvAsDuration("JURISDICTION_RELOAD_INTERVAL", 0),
		},
		Dynamo: DynamoConfig{
			Enabled:  getEnvAsBool("DYNAMO_ENABLED", false),
			Table:    getEnv("DYNAMO_TABLE", "receipts"),
			Region:   getEnv("DYNAMO_REGION", "us-east-1"),
			Endpoint: getEnv("DYNAMO_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("TENANT_CACHE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "receipts"),
		},
		Pricing: PricingConfig{
			DefaultFeePct:        getEnvAsDecimal("DEFAULT_PLATFORM_FEE_PCT", decimal.NewFromFloat(0.5)),
			DefaultBrandKey:      strings.ToLower(getEnv("DEFAULT_BRAND_KEY", "portalpay")),
			Currency:             getEnv("STORE_CURRENCY", "USD"),
			ReceiptListCap:       getEnvAsInt("RECEIPT_LIST_CAP", 100),
			PendingReceiptTTL:    getEnvAsDuration("PENDING_RECEIPT_TTL", 7*24*time.Hour),
			ExtraSettledStatuses: getEnvAsList("EXTRA_SETTLED_STATUSES", nil),
			PortalBaseURL:        strings.TrimRight(getEnv("PORTAL_BASE_URL", "http://localhost:8080"), "/"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Persistence: PersistenceConfig{
			MaxRetries:    getEnvAsInt("STORE_MAX_RETRIES", 3),
			RetryInitial:  getEnvAsDuration("STORE_RETRY_INITIAL", 50*time.Millisecond),
			CASRetries:    getEnvAsInt("STATUS_CAS_RETRIES", 5),
			FlushInterval: getEnvAsDuration("DEGRADED_FLUSH_INTERVAL", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Database.ConnectRetries < 0 {
		return fmt.Errorf("database connect retries cannot be negative")
	}

	if c.Auth.APIKey == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("API key or JWT secret is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Dynamo.Enabled && c.Dynamo.Table == "" {
		return fmt.Errorf("DynamoDB table is required when DynamoDB is enabled")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}

	if c.Pricing.DefaultFeePct.IsNegative() {
		return fmt.Errorf("default platform fee pct cannot be negative")
	}

	if c.Pricing.ReceiptListCap < 1 {
		return fmt.Errorf("receipt list cap must be at least 1")
	}

	if c.Pricing.Currency == "" {
		return fmt.Errorf("store currency is required")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit rps must be positive and burst at least 1")
	}

	if c.Persistence.MaxRetries < 0 || c.Persistence.CASRetries < 1 {
		return fmt.Errorf("store retries cannot be negative and CAS retries must be at least 1")
	}

	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

// getEnvAsDuration accepts Go duration strings such as "30s" or "168h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
