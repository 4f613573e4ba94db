package accounts

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.vimgram.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vimgram")
}

// Dir returns the account-specific directory.
func Dir(base, id string) string {
	return filepath.Join(base, "accounts", id)
}

// RegistryPath returns the accounts.json path.
func RegistryPath(base string) string {
	return filepath.Join(base, "accounts.json")
}

// ConfigPath returns the global config file path.
func ConfigPath(base string) string {
	return filepath.Join(base, "config.toml")
}

// SessionDBPath returns the Telegram session database path for an account.
func SessionDBPath(base, id string) string {
	return filepath.Join(Dir(base, id), "session.db")
}

// LockPath returns the lock file path for an account.
func LockPath(base, id string) string {
	return filepath.Join(Dir(base, id), "LOCK")
}

// LogDir returns the log directory for an account.
func LogDir(base, id string) string {
	return filepath.Join(Dir(base, id), "logs")
}

// LogPath returns the log file path for an account.
func LogPath(base, id string) string {
	return filepath.Join(LogDir(base, id), "vimgram.log")
}

// LegacySessionPath returns the pre-multi-account session location.
func LegacySessionPath(base string) string {
	return filepath.Join(base, "session.db")
}

// EnsureDir creates the account directory tree with proper permissions.
func EnsureDir(base, id string) error {
	dirs := []string{
		Dir(base, id),
		LogDir(base, id),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
