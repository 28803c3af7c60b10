package config

import "time"

// RateLimitConfig drives the token bucket guarding the public write
// endpoints.  The same numbers feed the Redis bucket and the in-process
// fallback used when Redis is unavailable.
type RateLimitConfig struct {
    Enabled        bool          `env:"RATE_LIMIT_ENABLED"         envDefault:"true"`
    Capacity       int           `env:"RATE_LIMIT_CAPACITY"        envDefault:"20"`
    RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS"   envDefault:"1"`
    RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"3s"`
    TTL            time.Duration `env:"RATE_LIMIT_TTL"             envDefault:"10m"`
    KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY"    envDefault:"ip_route"`
    Prefix         string        `env:"RATE_LIMIT_PREFIX"          envDefault:"rl"`
    Debug          bool          `env:"RATE_LIMIT_DEBUG"           envDefault:"false"`
}

// LoadRateLimitConfig parses RATE_LIMIT_* and normalizes the result.
func LoadRateLimitConfig() RateLimitConfig {
    var cfg RateLimitConfig
    if err := ParseEnv(&cfg); err != nil {
        cfg = RateLimitConfig{Enabled: true, KeyStrategy: "ip_route", Prefix: "rl"}
    }
    return cfg.Normalize()
}

// Normalize clamps every field into a usable range.
func (c RateLimitConfig) Normalize() RateLimitConfig {
    if c.Capacity < 1 { c.Capacity = 1 }
    if c.RefillTokens < 1 { c.RefillTokens = 1 }
    if c.RefillInterval <= 0 { c.RefillInterval = time.Second }
    minTTL := 5 * c.RefillInterval
    if c.TTL < minTTL { c.TTL = minTTL }
    if c.Prefix == "" { c.Prefix = "rl" }
    return c
}

// PerSecond expresses the refill rate in tokens per second.
func (c RateLimitConfig) PerSecond() float64 {
    return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}
