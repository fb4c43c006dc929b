package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	SiteID     string
	DriveID    string
	SPHost     string
	SPSitePath string

	OneSignalAppID   string
	OneSignalRestKey string

	PublicSharedKey string
	Port            string
	LogLevel        string

	GraphBaseURL     string
	LoginBaseURL     string
	OneSignalBaseURL string

	RateLimit       int
	RateLimitWindow time.Duration

	DownloadCacheTTL      time.Duration
	DownloadCacheMaxBytes int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
}

func Load() *Config {
	cfg := &Config{
		TenantID:     mustGetEnv("TENANT_ID"),
		ClientID:     mustGetEnv("CLIENT_ID"),
		ClientSecret: mustGetEnv("CLIENT_SECRET"),

		SiteID:     mustGetEnv("SITE_ID"),
		DriveID:    mustGetEnv("DRIVE_ID"),
		SPHost:     mustGetEnv("SP_HOST"),
		SPSitePath: mustGetEnv("SP_SITE_PATH"),

		OneSignalAppID:   mustGetEnv("ONESIGNAL_APP_ID"),
		OneSignalRestKey: mustGetEnv("ONESIGNAL_REST_KEY"),

		PublicSharedKey: getEnv("PUBLIC_SHARED_KEY", ""),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		GraphBaseURL:     getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		LoginBaseURL:     getEnv("LOGIN_BASE_URL", "https://login.microsoftonline.com"),
		OneSignalBaseURL: getEnv("ONESIGNAL_BASE_URL", "https://onesignal.com/api/v1"),

		RateLimit:       getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		DownloadCacheTTL:      getEnvDuration("DOWNLOAD_CACHE_TTL", 12*time.Hour),
		DownloadCacheMaxBytes: getEnvInt64("DOWNLOAD_CACHE_MAX_BYTES", 8<<20),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		PostgresUser:     getEnv("POSTGRES_USER", "graphproxy"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "graph_proxy"),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	return cfg
}

// AccessLogEnabled reports whether request rows should be persisted.
func (c *Config) AccessLogEnabled() bool {
	return c.PostgresHost != ""
}

// DownloadCacheEnabled reports whether the S3 download cache is configured.
// The cache index lives in Postgres, so both blocks must be present.
func (c *Config) DownloadCacheEnabled() bool {
	return c.S3Bucket != "" && c.PostgresHost != ""
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
