package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Payment provider configuration
	Provider ProviderConfig

	// Hold lifecycle configuration
	Holds HoldConfig

	// Billing configuration
	Billing BillingConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Shared token for internal operational endpoints (sweep, refunds)
	InternalAPIToken string

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL for cached tier availability reads
	AvailabilityCacheTTL time.Duration
}

// KafkaConfig holds Kafka notification pipeline configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           []string
	NotificationTopic string
}

// ProviderConfig holds external card-payment provider configuration.
// Timeout bounds every HTTP attempt; RetryMax and RetryBackoff define the
// fixed retry budget for transport failures and 5xx responses.
type ProviderConfig struct {
	BaseURL      string
	CommerceCode string
	APIKey       string
	ReturnURL    string
	Timeout      time.Duration
	RetryMax     int
	RetryBackoff time.Duration
}

// HoldConfig holds hold TTL and sweep configuration
type HoldConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	SweepBatch    int
}

// BillingConfig holds currency and platform fee configuration
type BillingConfig struct {
	Currency string
	// PlatformFeeRateBps is the end of the fee override chain
	// (tier -> event -> organizer -> platform), in basis points.
	PlatformFeeRateBps int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	CheckoutRequests int           `json:"checkout_requests"`
	PaymentRequests  int           `json:"payment_requests"`
	WebhookRequests  int           `json:"webhook_requests"`
	InternalRequests int           `json:"internal_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "boletera_db"),
			User:     getEnv("DB_USER", "boletera_user"),
			Password: getEnv("DB_PASSWORD", "boletera_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:                 getEnv("REDIS_HOST", "localhost"),
			Port:                 getEnv("REDIS_PORT", "6379"),
			Password:             getEnv("REDIS_PASSWORD", ""),
			DB:                   getIntEnv("REDIS_DB", 0),
			AvailabilityCacheTTL: getDurationEnv("REDIS_AVAILABILITY_CACHE_TTL", 30*time.Second),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:           getBoolEnv("KAFKA_ENABLED", false),
			Brokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notifications"),
		},

		// Payment provider configuration
		Provider: ProviderConfig{
			BaseURL:      getEnv("PROVIDER_BASE_URL", "https://webpay3gint.transbank.cl/rswebpaytransaction/api/webpay/v1.2"),
			CommerceCode: getEnv("PROVIDER_COMMERCE_CODE", ""),
			APIKey:       getEnv("PROVIDER_API_KEY", ""),
			ReturnURL:    getEnv("PROVIDER_RETURN_URL", "http://localhost:8080/api/v1/payments/return"),
			Timeout:      getDurationEnv("PROVIDER_TIMEOUT", 30*time.Second),
			RetryMax:     getIntEnv("PROVIDER_RETRY_MAX", 3),
			RetryBackoff: getDurationEnv("PROVIDER_RETRY_BACKOFF", 1*time.Second),
		},

		// Hold lifecycle configuration
		Holds: HoldConfig{
			TTL:           getDurationEnv("HOLD_TTL", 10*time.Minute),
			SweepInterval: getDurationEnv("HOLD_SWEEP_INTERVAL", 5*time.Minute),
			SweepBatch:    getIntEnv("HOLD_SWEEP_BATCH", 100),
		},

		// Billing configuration
		Billing: BillingConfig{
			Currency:           getEnv("BILLING_CURRENCY", "CLP"),
			PlatformFeeRateBps: getIntEnv("BILLING_PLATFORM_FEE_RATE_BPS", 1500),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:   getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:  getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			CheckoutRequests: getIntEnv("RATE_LIMIT_CHECKOUT_REQUESTS", 20),
			PaymentRequests:  getIntEnv("RATE_LIMIT_PAYMENT_REQUESTS", 30),
			WebhookRequests:  getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 120),
			InternalRequests: getIntEnv("RATE_LIMIT_INTERNAL_REQUESTS", 200),
			WhitelistedIPs:   getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Internal boundary
		InternalAPIToken: getEnv("INTERNAL_API_TOKEN", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
