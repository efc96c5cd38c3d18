package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Limits holds the normalization ceilings applied by the ingestion pipeline
// and the list endpoint. A single configured inline-media ceiling replaces
// the per-deployment drift seen historically.
type Limits struct {
	MaxUsernameLen      int
	MaxTextLen          int
	MaxDeviceLen        int
	MaxInlineMediaBytes int64
	ListDefaultLimit    int
	ListMaxLimit        int
}

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Record store backend: memory, postgres, sqlite, redis, mongo.
	StoreBackend string
	DatabaseURL  string
	SQLitePath   string
	RedisURL     string
	MongoURL     string
	MongoDB      string

	// S3-compatible object store.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string // public base URL; defaults to endpoint/bucket
	S3UseSSL    bool

	// Optional bcrypt hash gating bulk delete and purge. Empty means open.
	AdminKeyHash string

	VideoTimeoutSeconds int

	Limits Limits
}

// Load reads configuration from environment variables.
// In development, it loads from a .env file if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/chatserver.db"),
		RedisURL:     os.Getenv("REDIS_URL"),
		MongoURL:     os.Getenv("MONGO_URL"),
		MongoDB:      getEnv("MONGO_DB", "chatserver"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "chatserver-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
		S3UseSSL:    getEnv("S3_USE_SSL", "true") == "true",

		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),

		VideoTimeoutSeconds: getEnvInt("VIDEO_TIMEOUT_SECONDS", 120),

		Limits: Limits{
			MaxUsernameLen:      50,
			MaxTextLen:          5000,
			MaxDeviceLen:        100,
			MaxInlineMediaBytes: int64(getEnvInt("MAX_INLINE_MEDIA_MB", 10)) << 20,
			ListDefaultLimit:    getEnvInt("LIST_DEFAULT_LIMIT", 50),
			ListMaxLimit:        getEnvInt("LIST_MAX_LIMIT", 200),
		},
	}

	// In production a durable backend must be configured explicitly.
	if cfg.Env == "production" && cfg.StoreBackend == "memory" {
		panic("STORE_BACKEND must not be memory in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
