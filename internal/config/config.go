package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"boxoffice/internal/cache"
	"boxoffice/internal/database"
	"boxoffice/internal/external"
	"boxoffice/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Public base URL of the web client, used for CORS and payment redirects
	ClientURL string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	EventsCacheTTL    time.Duration

	Database      database.Config
	NATS          messaging.Config
	Payment       external.PaymentConfig
	Notifier      external.NotifierConfig
	Cache         cache.Config
	Elasticsearch ElasticsearchConfig
	Checkout      CheckoutConfig
	Consumers     ConsumersConfig
}

// CheckoutConfig holds settings of the terminal checkout client
type CheckoutConfig struct {
	APIBaseURL     string
	PricePerSeat   float64
	StoragePath    string
	SeatLayoutFile string
	SettleDelay    time.Duration
	PollAttempts   int
	PollInterval   time.Duration
	APITimeout     time.Duration
}

// ConsumersConfig holds settings of the NATS consumer process
type ConsumersConfig struct {
	QueueGroup            string
	AckWait               time.Duration
	MaxInflight           int
	NotifyMaxRedeliveries int
	MetricsPort           string
}

// LoadDotEnv loads variables from a .env file when one exists.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("No .env file found, using environment", "path", p)
				continue
			}
			slog.Warn("Failed to load .env file", "path", p, "error", err)
		}
	}
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3001"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		ClientURL: getEnv("CLIENT_URL", "http://localhost:8080"),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,
		EventsCacheTTL:    time.Duration(getEnvInt("EVENTS_CACHE_TTL_SEC", 60)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "boxoffice"),
			Password:           getEnv("DB_PASSWORD", "boxoffice"),
			DBName:             getEnv("DB_NAME", "boxoffice"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "boxoffice"),
			ClientID:  getEnv("NATS_CLIENT_ID", "boxoffice"),
		},

		Payment: external.PaymentConfig{
			HostURL:     getEnv("PHONEPE_HOST_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
			MerchantID:  getEnv("PHONEPE_MERCHANT_ID", ""),
			SaltKey:     getEnv("PHONEPE_SALT_KEY", ""),
			SaltIndex:   getEnv("PHONEPE_SALT_INDEX", "1"),
			CallbackURL: getEnv("PHONEPE_CALLBACK_URL", "https://webhook.site/callback-url"),
			Timeout:     time.Duration(getEnvInt("PHONEPE_TIMEOUT_SEC", 30)) * time.Second,
		},

		Notifier: external.NotifierConfig{
			FunctionURL: getEnv("EMAIL_FUNCTION_URL", ""),
			Secret:      getEnv("EMAIL_WEBHOOK_SECRET", ""),
			Timeout:     time.Duration(getEnvInt("EMAIL_TIMEOUT_SEC", 15)) * time.Second,
		},

		Cache: cache.Config{
			Enabled:  getEnvBool("VALKEY_ENABLED", false),
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Checkout: CheckoutConfig{
			APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:3001"),
			PricePerSeat:   getEnvFloat("PRICE_PER_SEAT", 500),
			StoragePath:    getEnv("LOCAL_STORAGE_PATH", defaultStoragePath()),
			SeatLayoutFile: getEnv("SEAT_LAYOUT_FILE", ""),
			SettleDelay:    time.Duration(getEnvInt("FINALIZE_SETTLE_DELAY_MS", 3000)) * time.Millisecond,
			PollAttempts:   getEnvInt("FINALIZE_POLL_ATTEMPTS", 5),
			PollInterval:   time.Duration(getEnvInt("FINALIZE_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
			APITimeout:     time.Duration(getEnvInt("API_TIMEOUT_SEC", 30)) * time.Second,
		},

		Consumers: ConsumersConfig{
			QueueGroup:            getEnv("CONSUMERS_QUEUE_GROUP", "boxoffice-consumers"),
			AckWait:               time.Duration(getEnvInt("CONSUMERS_ACK_WAIT_SEC", 30)) * time.Second,
			MaxInflight:           getEnvInt("CONSUMERS_MAX_INFLIGHT", 16),
			NotifyMaxRedeliveries: getEnvInt("NOTIFY_MAX_REDELIVERIES", 5),
			MetricsPort:           getEnv("CONSUMERS_METRICS_PORT", "9101"),
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "localstorage.json"
	}
	return filepath.Join(home, ".boxoffice", "localstorage.json")
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
