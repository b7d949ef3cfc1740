package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Redis     RedisSettings     `mapstructure:"redis"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Sync      SyncSettings      `mapstructure:"sync"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RedisSettings configures the shared store. An empty Addr runs the service
// without Redis: rate limiting degrades to the local limiter and the sync
// endpoints answer 503.
type RedisSettings struct {
	Addr       string `mapstructure:"addr"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// RateLimitSettings configures the sync endpoint policy and the global
// backstop applied across all identities.
type RateLimitSettings struct {
	SyncMaxRequests      int           `mapstructure:"sync_max_requests"`
	SyncWindow           time.Duration `mapstructure:"sync_window"`
	SyncDailyLimit       int           `mapstructure:"sync_daily_limit"`
	GlobalMaxRequests    int           `mapstructure:"global_max_requests"`
	GlobalWindow         time.Duration `mapstructure:"global_window"`
	MaxTrackedIdentities int           `mapstructure:"max_tracked_identities"`
}

// SyncSettings configures record persistence.
type SyncSettings struct {
	RecordTTL time.Duration `mapstructure:"record_ttl"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SYNC")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"redis.addr",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"rate_limit.sync_max_requests",
		"rate_limit.sync_window",
		"rate_limit.sync_daily_limit",
		"rate_limit.global_max_requests",
		"rate_limit.global_window",
		"rate_limit.max_tracked_identities",
		"sync.record_ttl",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "progress-sync")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	// External rate-limit contract: 20 requests/minute and 500/day per
	// identity on the sync endpoint, 100/minute across all identities.
	v.SetDefault("rate_limit.sync_max_requests", 20)
	v.SetDefault("rate_limit.sync_window", "1m")
	v.SetDefault("rate_limit.sync_daily_limit", 500)
	v.SetDefault("rate_limit.global_max_requests", 100)
	v.SetDefault("rate_limit.global_window", "1m")
	v.SetDefault("rate_limit.max_tracked_identities", 10000)

	// Records expire after a year of inactivity.
	v.SetDefault("sync.record_ttl", "8760h")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "SYNC_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
