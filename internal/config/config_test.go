package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.LegStore != LegStorePostgres {
		t.Fatalf("expected postgres leg store by default, got %q", cfg.LegStore)
	}
	if cfg.CatalogCacheTTL != 10*time.Minute {
		t.Fatalf("expected default cache ttl, got %v", cfg.CatalogCacheTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("LEG_STORE", "mongo")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("WRITE_RATE_LIMIT", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.MongoURI != "mongodb://mongo:27017" || cfg.LegStore != LegStoreMongo {
		t.Fatalf("expected override mongo settings")
	}
	if cfg.CatalogCacheTTL != 30*time.Second {
		t.Fatalf("expected override ttl, got %v", cfg.CatalogCacheTTL)
	}
	if cfg.WriteRateLimit != 2.5 {
		t.Fatalf("expected override rate limit")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected override log level")
	}
}
