// Package config handles the XDG configuration directory, the optional
// config.toml file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// AppName is the application directory name.
	AppName = "taskpro"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.toml"

	// CredentialsFile is the JSON credential store filename.
	CredentialsFile = "credentials.json"

	// LogFile receives logs while the interactive UI owns the terminal.
	LogFile = "taskpro.log"

	// CredentialsDB is the SQLite credential store filename.
	CredentialsDB = "credentials.db"

	// EnvAPIURL overrides the API base URL.
	EnvAPIURL = "TASKPRO_API_URL"

	// DefaultServer is the origin a relative API URL is resolved against.
	DefaultServer = "http://localhost:8000"

	// DefaultAPIURL is the API base when nothing else is configured.
	DefaultAPIURL = "/api"

	// DefaultRequestTimeout bounds a single API request.
	DefaultRequestTimeout = 30 * time.Second
)

// Credential store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// File mirrors config.toml.
type File struct {
	Server          string `toml:"server"`
	APIURL          string `toml:"api_url"`
	CredentialStore string `toml:"credential_store"`
	RequestTimeout  string `toml:"request_timeout"`
	LogLevel        string `toml:"log_level"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Server is the origin used to resolve a relative APIURL.
	Server string

	// APIURL is the API base URL as configured (possibly relative).
	APIURL string

	// CredentialStore selects the credential backend: "file" or "sqlite".
	CredentialStore string

	// RequestTimeout bounds each API request. Zero disables it.
	RequestTimeout time.Duration

	// LogLevel is the minimum slog level.
	LogLevel slog.Level

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with defaults for the given directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskpro or $HOME/.config/taskpro.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:             dir,
		Server:          DefaultServer,
		APIURL:          DefaultAPIURL,
		CredentialStore: StoreFile,
		RequestTimeout:  DefaultRequestTimeout,
		LogLevel:        slog.LevelWarn,
	}, nil
}

// Load creates a Config, applies config.toml from the directory if present,
// then the environment.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cfg.FilePath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	default:
		var f File
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
		if err := cfg.apply(f); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}

func (c *Config) apply(f File) error {
	if f.Server != "" {
		c.Server = f.Server
	}
	if f.APIURL != "" {
		c.APIURL = f.APIURL
	}
	switch strings.ToLower(f.CredentialStore) {
	case "":
	case StoreFile, StoreSQLite:
		c.CredentialStore = strings.ToLower(f.CredentialStore)
	default:
		return fmt.Errorf("unknown credential_store: %s", f.CredentialStore)
	}
	if f.RequestTimeout != "" {
		d, err := time.ParseDuration(f.RequestTimeout)
		if err != nil || d < 0 {
			return fmt.Errorf("bad request_timeout: %s", f.RequestTimeout)
		}
		c.RequestTimeout = d
	}
	if f.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(f.LogLevel)); err != nil {
			return fmt.Errorf("bad log_level: %s", f.LogLevel)
		}
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ResolveAPIURL returns the absolute API base URL without a trailing slash.
// A base without scheme and host ("/api") is resolved against Server.
func (c *Config) ResolveAPIURL() (string, error) {
	base, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		server, err := url.Parse(c.Server)
		if err != nil || server.Scheme == "" || server.Host == "" {
			return "", fmt.Errorf("invalid server %q", c.Server)
		}
		base = server.ResolveReference(base)
	}
	return strings.TrimRight(base.String(), "/"), nil
}

// Logger builds the process logger. Debug overrides the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := c.LogLevel
	if c.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// CredentialsPath returns the path to the JSON credential store.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// CredentialsDBPath returns the path to the SQLite credential store.
func (c *Config) CredentialsDBPath() string {
	return filepath.Join(c.Dir, CredentialsDB)
}

// LogPath returns the path to the interactive UI log.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
