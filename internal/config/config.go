// SPDX-License-Identifier: EPL-2.0

// Package config loads the command line host settings with viper. Values
// come from, in order of precedence, flags, AUDWAVE_* environment
// variables, a YAML config file and the defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ik5/audwave/admission"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/waveform"
)

const EnvPrefix = "AUDWAVE"

// Keys of every setting. Flags use the same names with dashes.
const (
	KeyConcurrency = "concurrency"
	KeyPoints      = "points"
	KeyNormalize   = "normalize"
	KeyScale       = "scale"
	KeyThreshold   = "threshold"
	KeyChunkSize   = "chunk_size"
	KeyCacheTTL    = "cache_ttl"
	KeyLogLevel    = "log_level"
	KeyOutput      = "output"
	KeyMetricsAddr = "metrics_addr"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Concurrency int           `mapstructure:"concurrency"`
	Points      int           `mapstructure:"points"`
	Normalize   bool          `mapstructure:"normalize"`
	Scale       float64       `mapstructure:"scale"`
	Threshold   float64       `mapstructure:"threshold"`
	ChunkSize   int           `mapstructure:"chunk_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	LogLevel    string        `mapstructure:"log_level"`
	Output      string        `mapstructure:"output"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// New returns a viper instance with the defaults and environment lookup set.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyConcurrency, admission.DefaultCapacity)
	v.SetDefault(KeyPoints, 100)
	v.SetDefault(KeyNormalize, true)
	v.SetDefault(KeyScale, waveform.DefaultScale)
	v.SetDefault(KeyThreshold, waveform.DefaultSilenceThreshold)
	v.SetDefault(KeyChunkSize, decoder.DefaultChunkSize)
	v.SetDefault(KeyCacheTTL, 10*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOutput, "json")
	v.SetDefault(KeyMetricsAddr, "")
}

// BindFlags binds every flag of fs whose name matches a key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = errors.Join(err, fmt.Errorf("error binding flag %s: %w", f.Name, bindErr))
		}
	})

	return err
}

func isKey(key string) bool {
	switch key {
	case KeyConcurrency, KeyPoints, KeyNormalize, KeyScale, KeyThreshold,
		KeyChunkSize, KeyCacheTTL, KeyLogLevel, KeyOutput, KeyMetricsAddr:
		return true
	default:
		return false
	}
}

// Load reads file, when not empty, and returns the validated settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every setting. A concurrency of zero or less is valid and
// removes the bound.
func (c *Config) Validate() error {
	var errs []error

	if c.Points <= 0 {
		errs = append(errs, fmt.Errorf("points must be positive, got %d", c.Points))
	}
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %g", c.Scale))
	}
	if c.Threshold < 0 {
		errs = append(errs, fmt.Errorf("threshold must not be negative, got %g", c.Threshold))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL))
	}
	switch c.Output {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output must be json or yaml, got %q", c.Output))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}
