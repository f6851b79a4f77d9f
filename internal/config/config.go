// Package config loads the process configuration through a layered viper
// setup: in-code defaults, an optional YAML file, SIM_-prefixed environment
// variables, then CLI flags — each layer overriding the last.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the single source of truth for process configuration; nothing
// outside Load reads an environment variable or config file directly.
type Config struct {
	Addr              string        `mapstructure:"addr"`
	LogLevel          string        `mapstructure:"log_level"`
	Env               string        `mapstructure:"env"` // "development" or "production"
	Seed              int64         `mapstructure:"seed"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
	BroadcastEvery    int           `mapstructure:"broadcast_every"`
	InitialMinPerSub  int           `mapstructure:"initial_min_per_sub"`
	InitialMaxPerSub  int           `mapstructure:"initial_max_per_sub"`
	APIKeys           []string      `mapstructure:"api_keys"`
	RateLimitPerSec   float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst    int           `mapstructure:"rate_limit_burst"`
}

// Options are the values a CLI flag layer may override. Zero values mean
// "not set by the flag".
type Options struct {
	ConfigFile string
	Addr       string
	LogLevel   string
	Seed       int64
}

func defaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("env", "development")
	v.SetDefault("seed", int64(0))
	v.SetDefault("tick_interval", 500*time.Millisecond)
	v.SetDefault("broadcast_every", 2)
	v.SetDefault("initial_min_per_sub", 2)
	v.SetDefault("initial_max_per_sub", 3)
	v.SetDefault("api_keys", []string{})
	v.SetDefault("rate_limit_per_sec", 5.0)
	v.SetDefault("rate_limit_burst", 10)
}

// Load builds a Config from defaults, an optional file, SIM_-prefixed
// environment variables, and the CLI overrides in opts, in that precedence
// order (later layers win).
func Load(opts Options) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.Addr != "" {
		v.Set("addr", opts.Addr)
	}
	if opts.LogLevel != "" {
		v.Set("log_level", opts.LogLevel)
	}
	if opts.Seed != 0 {
		v.Set("seed", opts.Seed)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}
