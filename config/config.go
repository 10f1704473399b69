// Package config loads application settings from .env, config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultTMDBBaseURL is the TMDB v3 API root
const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

// ErrMissingAPIKey is returned when no TMDB API key is configured
var ErrMissingAPIKey = errors.New("TMDB_API_KEY is required")

// Config holds every setting the application reads at startup
type Config struct {
	TMDB   TMDBConfig   `mapstructure:"tmdb"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// TMDBConfig configures the remote data source
type TMDBConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	QPS     int           `mapstructure:"qps"` // 0 disables throttling
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// DetailWait bounds how long a detail request waits for the fetch to settle
	DetailWait time.Duration `mapstructure:"detail_wait"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env (if present), then config.yaml from . or ./configs (if
// present), then the environment. Environment variables win; nested keys map
// to upper-case names joined by underscores, e.g. tmdb.api_key -> TMDB_API_KEY.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// tmdb.api_key has no default but must be known to viper for AutomaticEnv to bind it
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", DefaultTMDBBaseURL)
	v.SetDefault("tmdb.qps", 40)
	v.SetDefault("tmdb.timeout", 30*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0) // event streams stay open
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.detail_wait", 20*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks required settings
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.TMDB.QPS < 0 {
		return fmt.Errorf("tmdb.qps must not be negative, got %d", c.TMDB.QPS)
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must not be empty")
	}
	return nil
}
