package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the registration gateway's full runtime configuration, loaded
// from the environment.
type Config struct {
	Server   ServerConfig
	Platform PlatformConfig
	Cache    CacheConfig
	Journal  JournalConfig
	Stream   StreamConfig
	Checkout CheckoutConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PlatformConfig is the Gatherly API credential set handed to the SDK.
type PlatformConfig struct {
	APIKey  string
	BaseURL string
}

type CacheConfig struct {
	Enabled bool
	Addr    string
	TTL     time.Duration
}

// JournalConfig selects the journal backend. Driver is "sqlite" or
// "postgres"; DSN is the sqlite path or the Postgres connection string.
type JournalConfig struct {
	Driver string
	DSN    string
}

type StreamConfig struct {
	Enabled  bool
	MockMode bool
	Brokers  []string
	Topics   TopicConfig
}

type TopicConfig struct {
	RegistrationPending   string
	RegistrationCompleted string
	RegistrationFailed    string
}

// CheckoutConfig selects the checkout provider for paid events. Provider is
// "stripe" or "none".
type CheckoutConfig struct {
	Provider        string
	StripeSecretKey string
	ThemeColor      string
}

// AdminConfig guards the journal endpoints.
type AdminConfig struct {
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Platform: PlatformConfig{
			APIKey:  getEnv("GATHERLY_API_KEY", ""),
			BaseURL: getEnv("GATHERLY_BASE_URL", ""),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", true),
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			TTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Journal: JournalConfig{
			Driver: getEnv("JOURNAL_DRIVER", "sqlite"),
			DSN:    getEnv("JOURNAL_DSN", "file:registrations.db?cache=shared"),
		},
		Stream: StreamConfig{
			Enabled:  getEnvBool("KAFKA_ENABLED", false),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topics: TopicConfig{
				RegistrationPending:   getEnv("KAFKA_TOPIC_PENDING", "registration-pending"),
				RegistrationCompleted: getEnv("KAFKA_TOPIC_COMPLETED", "registration-completed"),
				RegistrationFailed:    getEnv("KAFKA_TOPIC_FAILED", "registration-failed"),
			},
		},
		Checkout: CheckoutConfig{
			Provider:        getEnv("CHECKOUT_PROVIDER", "none"),
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			ThemeColor:      getEnv("CHECKOUT_THEME_COLOR", ""),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
