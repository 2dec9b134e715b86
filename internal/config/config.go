// Package config handles the XDG configuration directory, config.yaml and
// the paths of files tasker keeps there.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasker"

	// ConfigFile is the optional settings file in the config directory.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// DefaultBaseURL is the task functions origin used when nothing else is configured.
	DefaultBaseURL = "https://northamerica-northeast2-serverless-442504.cloudfunctions.net"

	// DefaultTimeout is the per-request limit when timeout is not set.
	// Zero means no limit beyond the transport's own.
	DefaultTimeout time.Duration = 0

	// EnvBaseURL overrides base_url.
	EnvBaseURL = "TASKER_BASE_URL"

	// EnvToken overrides auth.token.
	EnvToken = "TASKER_TOKEN"
)

// Auth modes for the backend transport.
const (
	AuthNone    = "none"
	AuthBearer  = "bearer"
	AuthIDToken = "idtoken"
)

// AuthConfig selects how requests to the task functions are authenticated.
type AuthConfig struct {
	// Mode is one of none, bearer, idtoken.
	Mode string `yaml:"mode"`

	// Audience is the ID token audience; defaults to the base URL.
	Audience string `yaml:"audience"`

	// CredentialsFile is a service account key for idtoken mode. Empty uses ADC.
	CredentialsFile string `yaml:"credentials_file"`

	// Token is the static bearer token for bearer mode.
	Token string `yaml:"token"`
}

// Backend holds settings for the task functions backend.
type Backend struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Auth    AuthConfig    `yaml:"auth"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Backend is loaded from config.yaml and the environment.
	Backend Backend

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// DefaultBackend returns the backend settings used when config.yaml is absent.
func DefaultBackend() Backend {
	return Backend{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Auth:    AuthConfig{Mode: AuthNone},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasker or $HOME/.config/tasker.
// Backend settings start from defaults, then config.yaml, then the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Backend: DefaultBackend()}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Backend.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return cfg, nil
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

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, &c.Backend); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Backend.Auth.Token = v
		if c.Backend.Auth.Mode == "" || c.Backend.Auth.Mode == AuthNone {
			c.Backend.Auth.Mode = AuthBearer
		}
	}
}

// Validate checks backend settings after all sources are applied.
func (b *Backend) Validate() error {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		return errors.New("base_url is empty")
	}
	if b.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", b.Timeout)
	}
	if b.Auth.Mode == "" {
		b.Auth.Mode = AuthNone
	}
	switch b.Auth.Mode {
	case AuthNone, AuthIDToken:
	case AuthBearer:
		if b.Auth.Token == "" {
			return errors.New("auth.token is required for bearer mode")
		}
	default:
		return fmt.Errorf("unknown auth.mode: %s", b.Auth.Mode)
	}
	return nil
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}
