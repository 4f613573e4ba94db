package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.Telegram.APIID = 12345
	cfg.Telegram.APIHash = "abcdef"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Telegram.APIID != 12345 || loaded.Telegram.APIHash != "abcdef" {
		t.Errorf("credentials = %d/%q, want 12345/abcdef",
			loaded.Telegram.APIID, loaded.Telegram.APIHash)
	}
	if loaded.UI.DialogLimit != 100 || loaded.UI.HistoryLimit != 50 {
		t.Errorf("limits = %d/%d, want defaults 100/50",
			loaded.UI.DialogLimit, loaded.UI.HistoryLimit)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte("[telegram]\napi_id = 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want default 50", cfg.UI.HistoryLimit)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "999")
	t.Setenv("TELEGRAM_API_HASH", "envhash")

	cfg := Default()
	cfg.Telegram.APIID = 1
	cfg.Telegram.APIHash = "filehash"
	cfg.ApplyEnv()

	if cfg.Telegram.APIID != 999 || cfg.Telegram.APIHash != "envhash" {
		t.Errorf("env override = %d/%q, want 999/envhash",
			cfg.Telegram.APIID, cfg.Telegram.APIHash)
	}
}

func TestApplyEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "not-a-number")

	cfg := Default()
	cfg.Telegram.APIID = 42
	cfg.ApplyEnv()

	if cfg.Telegram.APIID != 42 {
		t.Errorf("APIID = %d, want 42 (garbage env ignored)", cfg.Telegram.APIID)
	}
}

func TestHasCredentials(t *testing.T) {
	cfg := Default()
	if cfg.HasCredentials() {
		t.Error("empty config should not report credentials")
	}
	cfg.Telegram.APIID = 1
	cfg.Telegram.APIHash = "h"
	if !cfg.HasCredentials() {
		t.Error("filled config should report credentials")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
