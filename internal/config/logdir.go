package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir expands path, creates it if needed and checks that files can be
// written into it. It returns the absolute directory.
func EnsureDir(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", abs, err)
	}
	probe, err := os.CreateTemp(abs, ".track-probe-*")
	if err != nil {
		return "", fmt.Errorf("%s is not writable: %w", abs, err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return abs, nil
}

// Discovery locates the log directory: the TRACK_LOG_PATH environment
// variable first, then the configured log_path, then the user is asked and
// the answer is saved to the config file.
type Discovery struct {
	ConfigPath string
	Getenv     func(string) string
	// Ask prompts for a directory, offering def as the default.
	Ask func(def string) (string, error)
	// Warn reports a candidate that could not be used.
	Warn func(msg string)
}

// DefaultLogDir is offered when the user is asked for a directory.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "track_logs"
	}
	return filepath.Join(home, "track_logs")
}

// LogDir returns a usable log directory for cfg.
func (d Discovery) LogDir(cfg Config) (string, error) {
	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	warn := d.Warn
	if warn == nil {
		warn = func(string) {}
	}

	if env := getenv(EnvLogPath); env != "" {
		dir, err := EnsureDir(env)
		if err == nil {
			return dir, nil
		}
		warn(fmt.Sprintf("%s is set but not usable (%v). Falling back to config.", EnvLogPath, err))
	}

	if cfg.LogPath != "" {
		dir, err := EnsureDir(cfg.LogPath)
		if err == nil {
			return dir, nil
		}
		warn(fmt.Sprintf("Configured log path is not usable (%v).", err))
	}

	if d.Ask == nil {
		return "", fmt.Errorf("log path not configured: set %s or log_path in %s", EnvLogPath, d.ConfigPath)
	}
	for {
		entered, err := d.Ask(DefaultLogDir())
		if err != nil {
			return "", err
		}
		if entered == "" {
			entered = DefaultLogDir()
		}
		dir, err := EnsureDir(entered)
		if err != nil {
			warn(fmt.Sprintf("That path is not writable or invalid (%v). Try again.", err))
			continue
		}
		if err := SetLogPath(d.ConfigPath, dir); err != nil {
			warn(fmt.Sprintf("Could not save log path: %v", err))
		}
		return dir, nil
	}
}
