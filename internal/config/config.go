// Package config reads the settings of the grape command from GRAPE_*
// environment variables. The library itself is configured only through
// functional options.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/reoring/grape"
)

// Prefix is prepended to every variable name.
const Prefix = "GRAPE_"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the command configuration.
type Config struct {
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"warn"`
	Lang         string        `env:"LANG" envDefault:"en"`
	Truthy       []string      `env:"TRUTHY" envSeparator:","`
	Falsy        []string      `env:"FALSY" envSeparator:","`
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`
	DB           DB            `envPrefix:"DB_"`
	Decode       Decode
}

// DB selects the database handed to store rules. An empty DSN disables it.
type DB struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN"`
	Placeholder string `env:"PLACEHOLDER"`
}

// Decode bounds the JSON input documents. Duplicates is last, warn or
// error.
type Decode struct {
	MaxDepth   int    `env:"MAX_DEPTH" envDefault:"0"`
	MaxBytes   int64  `env:"MAX_BYTES" envDefault:"0"`
	Duplicates string `env:"DUPLICATE_KEYS" envDefault:"warn"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and bounds.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %sLOG_LEVEL: %v", ErrInvalidConfig, Prefix, err)
	}
	if c.Lang != "en" && c.Lang != "fr" {
		return fmt.Errorf("%w: %sLANG must be en or fr, got %q", ErrInvalidConfig, Prefix, c.Lang)
	}
	switch c.DB.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("%w: %sDB_DRIVER must be sqlite or pgx, got %q", ErrInvalidConfig, Prefix, c.DB.Driver)
	}
	switch c.DB.Placeholder {
	case "", "question", "dollar":
	default:
		return fmt.Errorf("%w: %sDB_PLACEHOLDER must be question or dollar, got %q", ErrInvalidConfig, Prefix, c.DB.Placeholder)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: %sPROBE_TIMEOUT must be positive", ErrInvalidConfig, Prefix)
	}
	switch c.Decode.Duplicates {
	case "last", "warn", "error":
	default:
		return fmt.Errorf("%w: %sDUPLICATE_KEYS must be last, warn or error, got %q", ErrInvalidConfig, Prefix, c.Decode.Duplicates)
	}
	if c.Decode.MaxDepth < 0 || c.Decode.MaxBytes < 0 {
		return fmt.Errorf("%w: decode limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return l
}

// Dollar reports whether queries use $n placeholders. It defaults to true
// for the pgx driver.
func (c *Config) Dollar() bool {
	if c.DB.Placeholder == "" {
		return c.DB.Driver == "pgx"
	}
	return c.DB.Placeholder == "dollar"
}

// Bools returns the truthy/falsy lists, the defaults extended with the
// configured words.
func (c *Config) Bools() *grape.BoolSet {
	b := grape.DefaultBools()
	b.ExtendTruthy(words(c.Truthy)...)
	b.ExtendFalsy(words(c.Falsy)...)
	return b
}

// DecodeOptions returns the JSON decode settings as grape options. warn
// receives duplicate keys under the warn policy.
func (c *Config) DecodeOptions(warn func(path, message string)) []grape.DecodeOption {
	policy := grape.DuplicateWarn
	switch c.Decode.Duplicates {
	case "last":
		policy = grape.DuplicateLast
	case "error":
		policy = grape.DuplicateError
	}
	opts := []grape.DecodeOption{grape.OnDuplicateKey(policy, warn)}
	if c.Decode.MaxDepth > 0 {
		opts = append(opts, grape.MaxDepth(c.Decode.MaxDepth))
	}
	if c.Decode.MaxBytes > 0 {
		opts = append(opts, grape.MaxBytes(c.Decode.MaxBytes))
	}
	return opts
}

func words(list []string) []grape.Value {
	out := make([]grape.Value, 0, len(list))
	for _, w := range list {
		out = append(out, grape.String(w))
	}
	return out
}
