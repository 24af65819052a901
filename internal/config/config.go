package config

import (
	"fmt"
	"os"
	"slices"
)

// Допустимые типы хранилища.
const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageNATS     = "nats"
	StorageMongo    = "mongo"
	StorageMinio    = "minio"
)

var storageTypes = []string{StorageInMemory, StoragePostgres, StorageRedis, StorageNATS, StorageMongo, StorageMinio}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port      string
	Storage   string
	Namespace string
	LogLevel  string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	NATSURL    string
	NATSBucket string

	MongoURI string
	MongoDB  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		Storage:        getenv("STORAGE", StorageInMemory),
		Namespace:      getenv("NAMESPACE", "minifeed"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		NATSURL:        getenv("NATS_URL", "nats://127.0.0.1:4222"),
		NATSBucket:     getenv("NATS_BUCKET", "minifeed"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "minifeed"),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "minifeed"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
	}
}

// Validate проверяет значения, которые можно задать флагами.
func (c *Config) Validate() error {
	if !slices.Contains(storageTypes, c.Storage) {
		return fmt.Errorf("invalid storage type: %s, allowed values are: %s", c.Storage, storageTypes)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s, allowed values are: %s", c.LogLevel, logLevels)
	}
	if c.Storage == StoragePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set for postgres storage")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
