package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the assistant service root used when nothing is configured
	DefaultAPIURL = "http://localhost:3000/api"
	// DefaultTimeout bounds each request to the assistant service
	DefaultTimeout = 60 * time.Second

	envAPIURL = "MERCHANT_SUPPORT_API_URL"
	envShop   = "MERCHANT_SUPPORT_SHOP"
)

// Config holds client settings
type Config struct {
	APIURL   string        `yaml:"api_url"`
	Shop     string        `yaml:"shop,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level,omitempty"`
	Theme    string        `yaml:"theme,omitempty"` // glamour style: "auto", "dark", "light", "notty"
	WordWrap int           `yaml:"word_wrap,omitempty"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
		Theme:    "auto",
		WordWrap: 100,
	}
}

// DefaultConfigPath returns ~/.merchant-support/config.yaml
func DefaultConfigPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns the directory holding the config file and the UI log
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".merchant-support"), nil
}

// LoadConfig reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			LogDebug("No config file at %s, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, &ParseError{Source: "config", Key: path, Err: err}
			}
		}
	}

	if v := os.Getenv(envAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(envShop); v != "" {
		cfg.Shop = v
	}

	return cfg, nil
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url cannot be empty")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not an absolute URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Theme) {
	case "", "auto", "dark", "light", "notty":
	default:
		return fmt.Errorf("theme %q is not one of auto, dark, light, notty", c.Theme)
	}
	if c.WordWrap < 0 {
		return errors.New("word_wrap cannot be negative")
	}
	return nil
}
