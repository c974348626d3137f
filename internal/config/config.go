package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	fileName       = "config.yaml"
	dbFileName     = "lintdeck.db"
	logFileName    = "lintdeck.log"
	defaultServer  = "http://localhost:9000"
	defaultTimeout = 30 * time.Second
)

// Settings are the user-editable values stored in config.yaml.
type Settings struct {
	Server             string        `yaml:"server,omitempty"`
	Token              string        `yaml:"token,omitempty"`
	Login              string        `yaml:"login,omitempty"`
	Password           string        `yaml:"password,omitempty"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify,omitempty"`
	Timeout            time.Duration `yaml:"timeout,omitempty"`
	PageSize           int           `yaml:"page_size,omitempty"`
	LogLevel           string        `yaml:"log_level,omitempty"`
}

// Config holds resolved configuration: where lintdeck keeps its files and
// how it reaches the issue server.
type Config struct {
	Dir       string // resolved lintdeck directory path
	File      string // full path to config.yaml
	DBPath    string // full path to lintdeck.db
	LogPath   string // full path to lintdeck.log
	EnvVarSet bool   // whether LINTDECK_PATH was used

	Settings
}

// Resolve returns the current configuration. The directory comes from
// LINTDECK_PATH, falling back to the user config directory. Values from
// config.yaml are then overridden by LINTDECK_URL, LINTDECK_TOKEN and
// LINTDECK_LOG_LEVEL.
func Resolve() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LINTDECK_URL"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("LINTDECK_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("LINTDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	cfg.Server = strings.TrimRight(cfg.Server, "/")

	return cfg, nil
}

// Load returns the configuration as written in config.yaml, without
// environment overrides or defaults. Use it to edit and Save the file.
func Load() (*Config, error) {
	var dir string
	var envVarSet bool

	if envPath := os.Getenv("LINTDECK_PATH"); envPath != "" {
		dir = envPath
		envVarSet = true
	} else {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
		dir = filepath.Join(base, "lintdeck")
	}

	cfg := &Config{
		Dir:       dir,
		File:      filepath.Join(dir, fileName),
		DBPath:    filepath.Join(dir, dbFileName),
		LogPath:   filepath.Join(dir, logFileName),
		EnvVarSet: envVarSet,
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", c.File, err)
	}
	if err := yaml.Unmarshal(data, &c.Settings); err != nil {
		return fmt.Errorf("parsing %s: %w", c.File, err)
	}
	return nil
}

// Exists checks if the lintdeck directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	if _, err := os.Stat(c.Dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureDir creates the lintdeck directory if needed.
func (c *Config) EnsureDir() error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", c.Dir, err)
	}
	return nil
}

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{"server", "token", "login", "password", "insecure_skip_verify", "timeout", "page_size", "log_level"}

// Set updates one setting from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server":
		c.Server = strings.TrimRight(value, "/")
	case "token":
		c.Token = value
	case "login":
		c.Login = value
	case "password":
		c.Password = value
	case "insecure_skip_verify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		c.InsecureSkipVerify = b
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		c.Timeout = d
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 500 {
			return fmt.Errorf("invalid value %q for %s: must be between 1 and 500", value, key)
		}
		c.PageSize = n
	case "log_level":
		if _, err := ParseLevel(value); err != nil {
			return err
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q: must be one of %v", key, Keys)
	}
	return nil
}

// Save writes the settings to config.yaml, replacing the file atomically.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	tmp := c.File + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.File); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", c.File, err)
	}
	return nil
}

// ParseLevel maps a level name to a slog level. The empty name is "info".
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", name)
	}
}

// Redacted returns s with all but the last four characters masked.
func Redacted(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
