package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "")
	t.Setenv("PORT", "")

	cfg := Load()
	assert.Equal(t, StorageInMemory, cfg.Storage)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "minifeed", cfg.Namespace)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE", StorageRedis)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.True(t, cfg.MinioUseSSL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage = "sqlite" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage = StoragePostgres; c.DatabaseURL = "" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.Storage = StoragePostgres; c.DatabaseURL = "postgres://x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: StorageInMemory, LogLevel: "info"}
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
