// Package config loads parley.json.
package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/parley-chat/parley/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "parley.json"

	// DefaultServerURL is the default chat server base URL.
	DefaultServerURL = "http://localhost:8080"

	// DefaultSocketPath is the WebSocket endpoint path on the server.
	DefaultSocketPath = "/ws"

	// DefaultMediaDir is the default local media directory.
	DefaultMediaDir = ".parley/media"
)

// Config represents the complete parley.json configuration.
type Config struct {
	// ServerURL is the chat server base URL, e.g. "http://localhost:8080".
	ServerURL string `json:"server_url,omitempty"`

	// SocketPath is the WebSocket endpoint path.
	SocketPath string `json:"socket_path,omitempty"`

	// Username pre-fills the login prompt.
	Username string `json:"username,omitempty"`

	// Reconnect contains connection retry configuration.
	Reconnect ReconnectConfig `json:"reconnect,omitempty"`

	// Media contains attachment storage configuration.
	Media MediaConfig `json:"media,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ReconnectConfig tunes the connection manager.
type ReconnectConfig struct {
	// Limit is the consecutive-failure limit before giving up.
	Limit int `json:"limit,omitempty"`

	// Delay is the base wait between attempts, e.g. "2s".
	Delay string `json:"delay,omitempty"`
}

// MediaConfig selects and configures the media backend.
type MediaConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the local directory for the disk backend.
	Dir string `json:"dir,omitempty"`

	// BaseURL is the public prefix stored media is served under.
	BaseURL string `json:"base_url,omitempty"`

	// Bucket and Prefix configure the s3 backend.
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads parley.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads parley.json from the working directory, falling back
// to defaults when the file is absent.
func LoadOrDefault() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(wd)
	if err != nil {
		var pe *errors.Error
		if stderrors.As(err, &pe) && pe.Code == "E100" {
			return New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	path := c.configPath
	if path == "" {
		path = ConfigFileName
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Path returns where the config was loaded from, empty for defaults.
func (c *Config) Path() string { return c.configPath }

// SocketURL returns the full WebSocket endpoint derived from ServerURL.
func (c *Config) SocketURL() string {
	url := c.ServerURL
	switch {
	case len(url) > 8 && url[:8] == "https://":
		url = "wss://" + url[8:]
	case len(url) > 7 && url[:7] == "http://":
		url = "ws://" + url[7:]
	}
	return url + c.SocketPath
}

// ReconnectDelay parses the configured delay.
func (c *Config) ReconnectDelay() time.Duration {
	d, err := time.ParseDuration(c.Reconnect.Delay)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath
	}
	if c.Reconnect.Limit == 0 {
		c.Reconnect.Limit = 3
	}
	if c.Reconnect.Delay == "" {
		c.Reconnect.Delay = "2s"
	}
	if c.Media.Backend == "" {
		c.Media.Backend = "disk"
	}
	if c.Media.Dir == "" {
		c.Media.Dir = DefaultMediaDir
	}
	if c.Media.BaseURL == "" {
		c.Media.BaseURL = c.ServerURL + "/media"
	}
}

// Validate rejects values the rest of the client cannot work with.
func (c *Config) Validate() error {
	if c.Media.Backend != "disk" && c.Media.Backend != "s3" {
		return errors.New("E102").
			WithDetail("media.backend must be \"disk\" or \"s3\", got \"" + c.Media.Backend + "\"")
	}
	if c.Media.Backend == "s3" && c.Media.Bucket == "" {
		return errors.New("E102").
			WithDetail("media.bucket is required for the s3 backend")
	}
	if _, err := time.ParseDuration(c.Reconnect.Delay); err != nil {
		return errors.New("E102").
			WithDetail("reconnect.delay is not a duration: " + c.Reconnect.Delay).
			WithSuggestion("Use a Go duration string like \"2s\" or \"500ms\".")
	}
	return nil
}
