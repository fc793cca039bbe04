// Package xdg resolves the on-disk locations hactl writes to, honoring the
// XDG base directory environment variables with the usual home-relative
// fallbacks.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "hactl"

// CacheDir returns the directory for registry snapshots, creating it if
// needed. Defaults to ~/.cache/hactl.
func CacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// StateDir returns the directory for history, stats, and context files,
// creating it if needed. Defaults to ~/.local/state/hactl.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
