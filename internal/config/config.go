// Package config resolves runtime settings from defaults, a TOML file, a .env
// file and TADA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/tada/internal/persist"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	// DefaultKey is the slot key the list lives under.
	DefaultKey = persist.DefaultKey
	// FileName is the config file looked up in the global config dir.
	FileName = "config.toml"
	// EnvFile is loaded from the working directory when present.
	EnvFile = ".env"
)

// Config holds the settings every command needs.
type Config struct {
	Backend  string `toml:"backend"`
	DataDir  string `toml:"data_dir"`
	Key      string `toml:"key"`
	Theme    string `toml:"theme"`
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in settings: a JSON file in the working directory.
func Default() *Config {
	return &Config{
		Backend:  BackendFile,
		DataDir:  ".",
		Key:      DefaultKey,
		Theme:    "classic",
		LogLevel: "warn",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tada/config.toml, or "" if no home
// directory can be determined.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tada", FileName)
}

// Load resolves the configuration. path names the TOML file; when empty the
// default location is used and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}
	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc Config
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.merge(&fc)
	return nil
}

func (c *Config) mergeEnv() {
	c.merge(&Config{
		Backend:  os.Getenv("TADA_BACKEND"),
		DataDir:  os.Getenv("TADA_DATA_DIR"),
		Key:      os.Getenv("TADA_KEY"),
		Theme:    os.Getenv("TADA_THEME"),
		LogLevel: os.Getenv("TADA_LOG_LEVEL"),
	})
}

// merge copies every non-empty field of o over c.
func (c *Config) merge(o *Config) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.Backend, o.Backend)
	set(&c.DataDir, o.DataDir)
	set(&c.Key, o.Key)
	set(&c.Theme, o.Theme)
	set(&c.LogLevel, o.LogLevel)
}

// Override applies explicitly set command-line values.
func (c *Config) Override(o Config) error {
	c.merge(&o)
	return c.Validate()
}

// Validate rejects settings no command could work with.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendFile, BackendSQLite)
	}
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("slot key cannot be empty")
	}
	return nil
}

// Encode renders c as TOML, used to show the effective configuration.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
