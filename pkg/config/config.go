package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	API struct {
		BaseURL string `toml:"base_url"`
	} `toml:"api"`
	Cache struct {
		Path         string   `toml:"path"`
		ListWindow   duration `toml:"list_window"`
		DetailWindow duration `toml:"detail_window"`
	} `toml:"cache"`
	Dex struct {
		MaxID int `toml:"max_id"`
	} `toml:"dex"`
	Quiz struct {
		MaxAttempts int `toml:"max_attempts"`
	} `toml:"quiz"`
}

// duration lets TOML carry durations as strings ("24h", "5m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("could not parse duration %q: %w", text, err)
	}
	*d = duration(parsed)

	return nil
}

func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

func (c *Config) ListWindow() time.Duration {
	return c.Cache.ListWindow.Duration()
}

func (c *Config) DetailWindow() time.Duration {
	return c.Cache.DetailWindow.Duration()
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.API.BaseURL = "https://pokeapi.co/api/v2"
	cfg.Cache.Path = "dexweb.db"
	cfg.Cache.ListWindow = duration(24 * time.Hour)
	cfg.Cache.DetailWindow = duration(5 * time.Minute)
	cfg.Dex.MaxID = 1025
	cfg.Quiz.MaxAttempts = 5

	return &cfg
}

// Read loads the config file named by DEXWEB_CONFIG (default
// "config.toml") over the defaults. A missing file is not an error.
func Read() (*Config, error) {
	path := os.Getenv("DEXWEB_CONFIG")
	if path == "" {
		path = "config.toml"
	}

	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return cfg, nil
}
