package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD).  KeyStrategy
// determines which parts of the request contribute to the cache key.
type CacheConfig struct {
    Enabled      bool          `env:"CACHE_ENABLED"        envDefault:"true"`
    MethodList   []string      `env:"CACHE_METHODS"        envDefault:"GET" envSeparator:","`
    TTL          time.Duration `env:"CACHE_TTL"            envDefault:"30s"`
    KeyStrategy  string        `env:"CACHE_KEY_STRATEGY"   envDefault:"route_query"`
    Prefix       string        `env:"CACHE_PREFIX"         envDefault:"cache"`
    MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

    Methods map[string]bool // derived from MethodList
}

// LoadCacheConfig reads CACHE_* variables.  Defaults are used when a
// variable is unset or malformed.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    var cfg CacheConfig
    if err := ParseEnv(&cfg); err != nil {
        cfg = CacheConfig{Enabled: true, MethodList: []string{"GET"}, TTL: 30 * time.Second, KeyStrategy: "route_query", Prefix: "cache"}
    }
    cfg.Methods = parseMethods(cfg.MethodList)
    return cfg
}

func parseMethods(list []string) map[string]bool {
    m := map[string]bool{}
    for _, p := range list {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
