package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL string

	RedisURL string
	CacheTTL time.Duration

	JWTSecret       string
	JWTAccessExpiry time.Duration

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool

	UploadMaxBytes    int64
	UploadConcurrency int

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	Domain       string

	DefaultLocale string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTL: getDurationEnv("CACHE_TTL", 5*time.Minute),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "maintenance-images"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),

		UploadMaxBytes:    getInt64Env("UPLOAD_MAX_BYTES", 10<<20),
		UploadConcurrency: getIntEnv("UPLOAD_CONCURRENCY", 4),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		Domain:       getEnv("DOMAIN", "localhost:5173"),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
