package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with origin fetches.
const DefaultUserAgent = "assetcache/1.0"

// Defaults for the cache policy. The staleness threshold is 7 days; raster
// assets get the larger store because every raster identifier is a single
// slot, while vector slots multiply per parameter set.
const (
	DefaultTTL              = 7 * 24 * time.Hour
	DefaultRasterMaxEntries = 200
	DefaultVectorMaxEntries = 100
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	Store struct {
		Provider         string `mapstructure:"provider"` // "disk", "memory" or "redis"
		Dir              string `mapstructure:"dir"`
		TTL              string `mapstructure:"ttl"` // Go duration string like "168h"
		RasterMaxEntries int    `mapstructure:"raster_max_entries"`
		VectorMaxEntries int    `mapstructure:"vector_max_entries"`
		Redis            struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"store"`

	Source struct {
		BaseURL   string `mapstructure:"base_url"`  // remote origin, if any
		AssetDir  string `mapstructure:"asset_dir"` // bundled-resource directory, if any
		Timeout   string `mapstructure:"timeout"`   // Go duration string like "30s"
		UserAgent string `mapstructure:"user_agent"`
	} `mapstructure:"source"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
}

// Load reads configuration from config.yaml (working directory or ./config)
// and ASSETCACHE_-prefixed environment variables. A missing file is not an
// error; defaults apply.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ASSETCACHE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("store.provider", "disk")
	viper.SetDefault("store.ttl", DefaultTTL.String())
	viper.SetDefault("store.raster_max_entries", DefaultRasterMaxEntries)
	viper.SetDefault("store.vector_max_entries", DefaultVectorMaxEntries)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Source.UserAgent == "" {
		config.Source.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// TTL parses the configured staleness threshold, falling back to the default
// on an empty or invalid value.
func (c *Config) TTL() time.Duration {
	if c.Store.TTL == "" {
		return DefaultTTL
	}
	d, err := time.ParseDuration(c.Store.TTL)
	if err != nil {
		return DefaultTTL
	}
	return d
}

// SourceTimeout parses the configured fetch timeout, 30s by default.
func (c *Config) SourceTimeout() time.Duration {
	if c.Source.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NewLogger builds the application logger with a console writer, applying the
// configured level (info when empty or invalid) globally.
func NewLogger(logLevel string) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	level := zerolog.InfoLevel
	if logLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(logLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", logLevel).Msg("Invalid log level, using default 'info'")
		}
	}
	zerolog.SetGlobalLevel(level)

	return logger.Level(level)
}
