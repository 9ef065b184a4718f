// Package config loads settings for the musig tools from a YAML file and
// MUSIG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/f3rmion/musig/curves"
	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/internal/logging"
	"github.com/f3rmion/musig/musig"
	"github.com/f3rmion/musig/session"
)

// EnvPrefix prefixes every environment override, e.g. MUSIG_CURVE or
// MUSIG_LOGGING_LEVEL.
const EnvPrefix = "MUSIG"

// Config is the resolved configuration.
type Config struct {
	Curve        string         `mapstructure:"curve"`
	HashName     string         `mapstructure:"hasher"`
	KeyOrder     string         `mapstructure:"key_order"`
	RoundTimeout time.Duration  `mapstructure:"round_timeout"`
	Logging      logging.Config `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("curve", curves.Default)
	v.SetDefault("hasher", "sha256")
	v.SetDefault("key_order", musig.KeyOrderSorted.String())
	v.SetDefault("round_timeout", session.DefaultRoundTimeout)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size_mb", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 28)
	v.SetDefault("logging.file.compress", false)
}

// New returns a viper instance with defaults and environment overrides
// installed. Flags may be bound to it before calling [Load].
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v, if path is not empty, and decodes the result.
// A missing default file is not an error; a missing explicit path is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("musig")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every name resolves.
func (c *Config) Validate() error {
	if _, err := c.Group(); err != nil {
		return err
	}
	if _, err := c.Hasher(); err != nil {
		return err
	}
	if _, err := musig.ParseKeyOrder(c.KeyOrder); err != nil {
		return err
	}
	if c.RoundTimeout <= 0 {
		return fmt.Errorf("round_timeout must be positive, got %s", c.RoundTimeout)
	}
	return nil
}

// Group resolves the configured curve.
func (c *Config) Group() (group.Group, error) {
	return curves.ByName(c.Curve)
}

// Hasher resolves the configured hash oracle.
func (c *Config) Hasher() (musig.Hasher, error) {
	return musig.HasherByName(c.HashName)
}

// MuSig builds a MuSig instance from the configured curve, hasher and key
// order.
func (c *Config) MuSig() (*musig.MuSig, error) {
	g, err := c.Group()
	if err != nil {
		return nil, err
	}
	h, err := c.Hasher()
	if err != nil {
		return nil, err
	}
	order, err := musig.ParseKeyOrder(c.KeyOrder)
	if err != nil {
		return nil, err
	}
	return musig.New(g, musig.WithHasher(h), musig.WithKeyOrder(order)), nil
}

// Session returns the coordinator settings.
func (c *Config) Session() session.Config {
	return session.Config{RoundTimeout: c.RoundTimeout}
}
