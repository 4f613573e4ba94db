package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.vimgram/config.toml.
type Config struct {
	Telegram Telegram `toml:"telegram"`
	UI       UI       `toml:"ui"`
	Log      Log      `toml:"log"`
}

// Telegram holds the API credentials issued at my.telegram.org.
type Telegram struct {
	APIID   int    `toml:"api_id"`
	APIHash string `toml:"api_hash"`
}

// UI holds fetch bounds for the interface.
type UI struct {
	DialogLimit  int `toml:"dialog_limit"`
	HistoryLimit int `toml:"history_limit"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UI:  UI{DialogLimit: 100, HistoryLimit: 50},
		Log: Log{Level: "info"},
	}
}

// Load reads config from the given path and fills unset fields with
// defaults. Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides credentials from TELEGRAM_API_ID / TELEGRAM_API_HASH.
// Environment wins over the file so shared machines never need creds on disk.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TELEGRAM_API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Telegram.APIID = id
		}
	}
	if v := os.Getenv("TELEGRAM_API_HASH"); v != "" {
		c.Telegram.APIHash = v
	}
}

// HasCredentials reports whether API credentials are present.
func (c *Config) HasCredentials() bool {
	return c.Telegram.APIID != 0 && c.Telegram.APIHash != ""
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.UI.DialogLimit <= 0 {
		c.UI.DialogLimit = def.UI.DialogLimit
	}
	if c.UI.HistoryLimit <= 0 {
		c.UI.HistoryLimit = def.UI.HistoryLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Save writes config to the given path, creating parent dirs as needed.
// The file holds API credentials, so it is written 0600.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
