package config

// Redis backs the distributed rate limiter, the response cache and the
// live-update fan-out between instances.  When the server cannot be
// reached at startup NewRedisClient returns nil and callers degrade to
// in-process behavior.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig is read from REDIS_* variables.  REDIS_HOST and REDIS_PORT
// take precedence over REDIS_ADDR when both are set.
type RedisConfig struct {
    Enabled  bool   `env:"REDIS_ENABLED"  envDefault:"true"`
    Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
    Host     string `env:"REDIS_HOST"`
    Port     string `env:"REDIS_PORT"`
    Password string `env:"REDIS_PASSWORD"`
    DB       int    `env:"REDIS_DB"       envDefault:"0"`
    TLS      bool   `env:"REDIS_TLS"      envDefault:"false"`
}

// LoadRedisConfig parses RedisConfig, falling back to defaults on a parse
// error so a typo never prevents startup.
func LoadRedisConfig() RedisConfig {
    var cfg RedisConfig
    if err := ParseEnv(&cfg); err != nil {
        return RedisConfig{Enabled: true, Addr: "localhost:6379"}
    }
    if cfg.Host != "" && cfg.Port != "" {
        cfg.Addr = cfg.Host + ":" + cfg.Port
    }
    return cfg
}

// NewRedisClient connects using cfg.  The returned client is nil when Redis
// is disabled or the ping fails.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    if !cfg.Enabled || cfg.Addr == "" {
        return nil
    }
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
