package config

import (
    "testing"
    "time"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("JWT_SECRET", "secret")
    cfg, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.StoreDriver != DriverMySQL {
        t.Fatalf("StoreDriver = %q, want mysql", cfg.StoreDriver)
    }
    if cfg.Raffle.TotalSlots != 100 || cfg.Raffle.PriceCents != 1500 {
        t.Fatalf("raffle defaults = %+v", cfg.Raffle)
    }
    if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
        t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
    }
}

func TestLoadRequiresJWTSecret(t *testing.T) {
    t.Setenv("JWT_SECRET", "")
    if _, err := Load(); err == nil {
        t.Fatal("expected error without JWT_SECRET")
    }
}

func TestLoadRejectsBadValues(t *testing.T) {
    tests := []struct {
        name string
        key  string
        val  string
    }{
        {"unknown driver", "STORE_DRIVER", "postgres"},
        {"zero slots", "RAFFLE_TOTAL_SLOTS", "0"},
        {"negative price", "RAFFLE_TICKET_PRICE_CENTS", "-1"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            t.Setenv("JWT_SECRET", "secret")
            t.Setenv(tt.key, tt.val)
            if _, err := Load(); err == nil {
                t.Fatalf("expected error for %s=%s", tt.key, tt.val)
            }
        })
    }
}

func TestLoadNormalizesDriver(t *testing.T) {
    t.Setenv("JWT_SECRET", "secret")
    t.Setenv("STORE_DRIVER", " SQLite ")
    cfg, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.StoreDriver != DriverSQLite {
        t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
    }
}

func TestRateLimitNormalize(t *testing.T) {
    cfg := RateLimitConfig{Capacity: 0, RefillTokens: -2, RefillInterval: 0, TTL: time.Second}.Normalize()
    if cfg.Capacity != 1 || cfg.RefillTokens != 1 || cfg.RefillInterval != time.Second {
        t.Fatalf("normalized = %+v", cfg)
    }
    if cfg.TTL != 5*time.Second {
        t.Fatalf("TTL = %s, want 5s", cfg.TTL)
    }
    if cfg.Prefix != "rl" {
        t.Fatalf("Prefix = %q", cfg.Prefix)
    }
    if got := cfg.PerSecond(); got != 1 {
        t.Fatalf("PerSecond = %v", got)
    }
}

func TestLoadCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head ,")
    cfg := LoadCacheConfig()
    if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || len(cfg.Methods) != 2 {
        t.Fatalf("Methods = %v", cfg.Methods)
    }
}

func TestLoadRedisConfigHostPort(t *testing.T) {
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    cfg := LoadRedisConfig()
    if cfg.Addr != "cache:6380" {
        t.Fatalf("Addr = %q", cfg.Addr)
    }
}
