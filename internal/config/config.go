package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvLogPath overrides the configured log directory.
const EnvLogPath = "TRACK_LOG_PATH"

// Config is the root configuration for track, stored in ~/.track/config.yaml.
type Config struct {
	// LogPath is the directory holding the log files.
	LogPath string        `yaml:"log_path"`
	Logging LoggingConfig `yaml:"logging"`
	Outlook OutlookConfig `yaml:"outlook"`
}

// LoggingConfig configures diagnostics written to stderr.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// DefaultClient is the track client assigned to imported Outlook events.
	DefaultClient string `yaml:"default_client"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `yaml:"timezone"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID. It supports
	// device code flow without a client secret and requires no app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultClient is the track client used for imported calendar events.
	DefaultClient = "Meetings"
	// DefaultLogLevel keeps the CLI quiet unless something goes wrong.
	DefaultLogLevel = "warn"
)

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: DefaultLogLevel},
		Outlook: OutlookConfig{
			TenantID:      DefaultTenantID,
			ClientID:      DefaultClientID,
			DefaultClient: DefaultClient,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# track configuration – ~/.track/config.yaml
#
# All settings are optional. Edit this file to customise track behaviour.

# Directory holding the time logs. The TRACK_LOG_PATH environment variable
# overrides it. Left empty, track asks for a folder on first use.
log_path: ""

logging:
  # Diagnostics written to stderr: debug, info, warn or error.
  level: warn

# ── Microsoft Graph / Outlook calendar import ─────────────────────────────
outlook:
  # Azure AD tenant ID.
  # • "common"  – personal Microsoft accounts and any organisation (default)
  # • Your organisation's tenant GUID
  tenant_id: common

  # Azure application (client) ID used for the OAuth2 device code flow.
  # The built-in value is the public Azure CLI app – no app registration needed.
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab

  # Client name assigned to imported calendar events.
  # Can be overridden per-sync with: track outlook sync --client <name>
  default_client: Meetings

  # IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
  # Leave empty to use UTC. Can be overridden with: track outlook sync --timezone <tz>
  timezone: ""
`

// Dir returns ~/.track.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".track"), nil
}

// FilePath returns the path to ~/.track/config.yaml.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads ~/.track/config.yaml, creating it with annotated defaults on
// first run.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, creating it with annotated defaults when
// it does not exist.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	if cfg.Outlook.DefaultClient == "" {
		cfg.Outlook.DefaultClient = DefaultClient
	}
	return cfg, nil
}

// SetLogPath stores logPath in the config file at path. Only the log_path
// value is rewritten; comments and other settings are kept.
func SetLogPath(path, logPath string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = []byte(configTemplate)
	} else if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config file %s: top level must be a mapping", path)
	}
	setScalar(root, "log_path", logPath)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// setScalar sets key to a string value in a mapping node, appending the key
// when absent.
func setScalar(m *yaml.Node, key, value string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			v.Kind = yaml.ScalarNode
			v.Tag = "!!str"
			v.Value = value
			v.Style = yaml.DoubleQuotedStyle
			v.Content = nil
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle},
	)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	return writeFile(path, []byte(configTemplate))
}

// writeFile atomically replaces path: write to a temp file then rename.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
