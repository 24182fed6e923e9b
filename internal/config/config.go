// Package config loads limitbook's runtime configuration the way
// finalex's services/marketfeeds/common/cfg package does: viper reads
// a YAML file, environment variables override it, and the result is
// validated before the caller gets it back.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration for cmd/matchd.
type Config struct {
	Symbol      string          `mapstructure:"symbol"`
	GFDHour     int             `mapstructure:"gfd_hour"`
	ListenAddr  string          `mapstructure:"listen_addr"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
	AuthToken   string          `mapstructure:"auth_token"`
	CORSOrigin  string          `mapstructure:"cors_origin"`
	// TickValue is the dollar value of one price tick. It is a
	// presentation-layer concern only — the matching core in engine/
	// always works in raw integer ticks per spec.md §3 — used by
	// server's public JSON rendering to show human-readable prices.
	TickValue decimal.Decimal `mapstructure:"-"`
	Env       string          `mapstructure:"env"`
}

func defaults() Config {
	return Config{
		Symbol:      "LMT",
		GFDHour:     16,
		ListenAddr:  ":8080",
		MetricsAddr: ":9090",
		CORSOrigin:  "*",
		TickValue:   decimal.NewFromFloat(0.01),
		Env:         "dev",
	}
}

// Load reads path (if it exists) into a Config seeded with defaults,
// then applies LIMITBOOK_* environment overrides, then validates.
//
// A missing config file is not an error: an unconfigured limitbook
// still boots with sane defaults, the way a lot of the pack's services
// do for local development.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := defaults()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIMITBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefault(v, "symbol", cfg.Symbol)
	setDefault(v, "gfd_hour", cfg.GFDHour)
	setDefault(v, "listen_addr", cfg.ListenAddr)
	setDefault(v, "metrics_addr", cfg.MetricsAddr)
	setDefault(v, "cors_origin", cfg.CORSOrigin)
	setDefault(v, "env", cfg.Env)
	setDefault(v, "auth_token", cfg.AuthToken)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// shopspring/decimal does not participate in mapstructure's default
	// decoding, so tick_value is read and parsed separately.
	if raw := v.GetString("tick_value"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_value %q: %w", raw, err)
		}
		cfg.TickValue = parsed
	} else if cfg.TickValue.IsZero() {
		cfg.TickValue = decimal.NewFromFloat(0.01)
	}

	cfg.AuthToken = firstNonEmpty(v.GetString("auth_token"), os.Getenv("LIMITBOOK_AUTH_TOKEN"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefault(v *viper.Viper, key string, value any) {
	v.SetDefault(key, value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate checks configuration validity, matching chycee-cryptoGo's
// Config.Validate shape.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.GFDHour < 0 || c.GFDHour > 23 {
		return fmt.Errorf("gfd_hour must be between 0 and 23, got %d", c.GFDHour)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.TickValue.IsNegative() {
		return fmt.Errorf("tick_value must not be negative")
	}
	return nil
}
