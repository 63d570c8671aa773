package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverMemory    = "memory"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"

	PolicyNotify = "notify"
	PolicyLog    = "log"

	ViewModeAtomic    = "atomic"
	ViewModeReadWrite = "read_write"
)

type Config struct {
	ServerPort  string `validate:"required"`
	Environment string `validate:"oneof=development staging production test"`
	LogLevel    string
	ServiceName string `validate:"required"`

	StoreDriver string `validate:"oneof=memory postgres firestore"`
	DatabaseURL string `validate:"required_if=StoreDriver postgres"`
	DBMigrate   bool

	FirebaseProject            string `validate:"required_if=StoreDriver firestore"`
	FirebaseServiceAccountPath string

	ImageBaseURL     string
	PlaceholderImage string `validate:"required"`

	StorageProvider string `validate:"omitempty,oneof=gcs minio"`
	StorageBucket   string `validate:"required_with=StorageProvider"`
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool

	RedisAddr string
	NatsURL   string

	ListingErrorPolicy  string `validate:"oneof=notify log"`
	CategoryErrorPolicy string `validate:"oneof=notify log"`
	ViewIncrementMode   string `validate:"oneof=atomic read_write"`

	ViewRateLimit  int           `validate:"min=1"`
	ViewRateWindow time.Duration `validate:"min=1ms"`

	ResyncSchedule string
	OTLPEndpoint   string
	AllowedOrigins []string
	// TrustedProxies are CIDRs whose X-Forwarded-For is believed when
	// resolving the client IP. Empty means the socket address is used.
	TrustedProxies []string `validate:"dive,cidr"`
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("SERVICE_NAME", "thriftmart"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMigrate:   getEnvAsBool("DB_MIGRATE", false),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		ImageBaseURL:     getEnv("IMAGE_BASE_URL", ""),
		PlaceholderImage: getEnv("PLACEHOLDER_IMAGE", "/placeholder.svg"),

		StorageProvider: strings.ToLower(getEnv("STORAGE_PROVIDER", "")),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		NatsURL:   getEnv("NATS_URL", ""),

		ListingErrorPolicy:  strings.ToLower(getEnv("LISTING_ERROR_POLICY", PolicyNotify)),
		CategoryErrorPolicy: strings.ToLower(getEnv("CATEGORY_ERROR_POLICY", PolicyLog)),
		ViewIncrementMode:   strings.ToLower(getEnv("VIEW_INCREMENT_MODE", ViewModeAtomic)),

		ViewRateLimit:  int(getEnvAsInt64("VIEW_RATE_LIMIT", 30)),
		ViewRateWindow: getEnvAsDuration("VIEW_RATE_WINDOW", time.Minute),

		ResyncSchedule: getEnv("RESYNC_SCHEDULE", "@every 5m"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
