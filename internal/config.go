package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend kinds.
const (
	BackendKindFS   = "fs"
	BackendKindHTTP = "http"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Backend BackendConfig     `yaml:"backend"`
	Auth    AuthConfig        `yaml:"auth"`
	Preview PreviewConfig     `yaml:"preview"`
}

// NewDefaultConfig returns a configuration with defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP:     HTTPConfig{Port: 8080},
		},
		Backend: BackendConfig{
			Kind:       BackendKindFS,
			Root:       "data",
			ContentDir: "content",
		},
		Auth: AuthConfig{
			UsersDir: "content/users",
		},
		Preview: PreviewConfig{
			TTL: "10m",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Preview.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BackendConfig selects and configures the remote file store.
//
// Kind controls which provider is used:
//   - "fs" (default): local file system rooted at Root, for development.
//   - "http": remote contents API at BaseURL, authenticated with Token.
type BackendConfig struct {
	Kind       string `yaml:"kind"`
	Root       string `yaml:"root"`
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	ContentDir string `yaml:"content_dir"`
}

// Validate validates the backend configuration.
func (c *BackendConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required, validation.In(BackendKindFS, BackendKindHTTP)),
	); err != nil {
		return err
	}
	if c.Kind == BackendKindFS && c.Root == "" {
		return fmt.Errorf("backend: kind is %q but root is empty", BackendKindFS)
	}
	if c.Kind == BackendKindHTTP && c.BaseURL == "" {
		return fmt.Errorf("backend: kind is %q but base_url is empty", BackendKindHTTP)
	}
	return nil
}

// AuthConfig holds the shared signing secret and the user directory.
type AuthConfig struct {
	Secret   string `yaml:"secret"`
	UsersDir string `yaml:"users_dir"`
	TokenTTL string `yaml:"token_ttl"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.UsersDir, validation.Required),
	); err != nil {
		return err
	}
	if _, err := c.TokenTTLDuration(); err != nil {
		return fmt.Errorf("auth: invalid token_ttl: %w", err)
	}
	return nil
}

// TokenTTLDuration parses TokenTTL. Empty means no expiry.
func (c *AuthConfig) TokenTTLDuration() (time.Duration, error) {
	if c.TokenTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TokenTTL)
}

// PreviewConfig bounds preview token lifetime.
type PreviewConfig struct {
	TTL string `yaml:"ttl"`
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	if _, err := c.TTLDuration(); err != nil {
		return fmt.Errorf("preview: invalid ttl: %w", err)
	}
	return nil
}

// TTLDuration parses TTL. Empty means tokens without an expiry claim.
func (c *PreviewConfig) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}
