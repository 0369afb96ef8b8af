package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Service names used for error messages, env bindings and keyring entries.
const (
	ServiceJira       = "jira"
	ServiceConfluence = "confluence"
)

// DefaultTimeoutSeconds bounds every request when no timeout is configured.
const DefaultTimeoutSeconds = 30

// Default transition ids for a stock Jira Cloud software workflow.
const (
	DefaultOpenTransition       = "11"
	DefaultInProgressTransition = "21"
	DefaultCloseTransition      = "31"
)

// Config represents the application configuration
type Config struct {
	Jira       JiraConfig       `mapstructure:"jira" yaml:"jira"`
	Confluence ConfluenceConfig `mapstructure:"confluence" yaml:"confluence"`
}

// ClientConfig holds the connection settings of a single REST service.
// AuthToken is the already encoded base64 "email:api_token" credential.
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	AuthToken      string `mapstructure:"auth_token" yaml:"auth_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Credentials lets a config file carry the raw email and API token
// instead of a pre-encoded AuthToken.
type Credentials struct {
	Email    string `mapstructure:"email" yaml:"email,omitempty"`
	APIToken string `mapstructure:"api_token" yaml:"api_token,omitempty"`
}

// JiraConfig represents JIRA API configuration
type JiraConfig struct {
	ClientConfig `mapstructure:",squash" yaml:",inline"`
	Credentials  `mapstructure:",squash" yaml:",inline"`

	ProjectKey  string           `mapstructure:"project_key" yaml:"project_key"`
	Transitions TransitionConfig `mapstructure:"transitions" yaml:"transitions"`
}

// TransitionConfig maps workflow actions to the tracker's transition ids.
type TransitionConfig struct {
	Open       string `mapstructure:"open" yaml:"open"`
	InProgress string `mapstructure:"in_progress" yaml:"in_progress"`
	Close      string `mapstructure:"close" yaml:"close"`
}

// ConfluenceConfig represents Confluence API configuration
type ConfluenceConfig struct {
	ClientConfig `mapstructure:",squash" yaml:",inline"`
	Credentials  `mapstructure:",squash" yaml:",inline"`

	SpaceKey string `mapstructure:"space_key" yaml:"space_key"`
}

// ConfigurationError reports a missing required setting. It is fatal for
// the client being constructed.
type ConfigurationError struct {
	Service string
	Field   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s is required", e.Service, e.Field)
}

// TokenLookup resolves a stored credential for a service when the config
// does not carry one.
type TokenLookup func(service string) (string, error)

// Validate checks that both the base URL and the auth token are set.
func (c ClientConfig) Validate(service string) error {
	if c.BaseURL == "" {
		return &ConfigurationError{Service: service, Field: "base URL"}
	}

	if c.AuthToken == "" {
		return &ConfigurationError{Service: service, Field: "auth token"}
	}

	return nil
}

// Timeout returns the per-request timeout.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EncodeToken builds the Basic auth token from an email and API token.
func EncodeToken(email, apiToken string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + apiToken))
}

// LoadConfig loads configuration from a YAML file, overlaid by the
// JIRA_URL, ENCODED_JIRA_TOKEN, CONFLUENCE_URL and ENCODED_CONFLUENCE_TOKEN
// environment variables. A missing file is not an error; each client
// validates its own section when it is built.
func LoadConfig(configPath string, lookup TokenLookup) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("jira.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("jira.transitions.open", DefaultOpenTransition)
	v.SetDefault("jira.transitions.in_progress", DefaultInProgressTransition)
	v.SetDefault("jira.transitions.close", DefaultCloseTransition)
	v.SetDefault("confluence.timeout_seconds", DefaultTimeoutSeconds)

	bindings := map[string]string{
		"jira.base_url":         "JIRA_URL",
		"jira.auth_token":       "ENCODED_JIRA_TOKEN",
		"confluence.base_url":   "CONFLUENCE_URL",
		"confluence.auth_token": "ENCODED_CONFLUENCE_TOKEN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("config file not found, using environment only", "path", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Jira.ClientConfig = resolveToken(ServiceJira, config.Jira.ClientConfig, config.Jira.Credentials, lookup)
	config.Confluence.ClientConfig = resolveToken(ServiceConfluence, config.Confluence.ClientConfig, config.Confluence.Credentials, lookup)

	return &config, nil
}

func resolveToken(service string, client ClientConfig, creds Credentials, lookup TokenLookup) ClientConfig {
	if client.AuthToken != "" {
		return client
	}

	if creds.Email != "" && creds.APIToken != "" {
		client.AuthToken = EncodeToken(creds.Email, creds.APIToken)
		return client
	}

	if lookup != nil {
		token, err := lookup(service)
		if err != nil {
			slog.Debug("no stored credential", "service", service, "error", err)
			return client
		}
		client.AuthToken = token
	}

	return client
}

// SampleConfig returns a placeholder configuration for `scribe init`.
func SampleConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			ClientConfig: ClientConfig{
				BaseURL:        "https://your-domain.atlassian.net",
				TimeoutSeconds: DefaultTimeoutSeconds,
			},
			Credentials: Credentials{
				Email:    "your-email@example.com",
				APIToken: "your-jira-api-token",
			},
			ProjectKey: "PROJ",
			Transitions: TransitionConfig{
				Open:       DefaultOpenTransition,
				InProgress: DefaultInProgressTransition,
				Close:      DefaultCloseTransition,
			},
		},
		Confluence: ConfluenceConfig{
			ClientConfig: ClientConfig{
				BaseURL:        "https://your-domain.atlassian.net/wiki",
				TimeoutSeconds: DefaultTimeoutSeconds,
			},
			Credentials: Credentials{
				Email:    "your-email@example.com",
				APIToken: "your-confluence-api-token",
			},
			SpaceKey: "DOCS",
		},
	}
}

// WriteSample writes the sample configuration to configPath.
func WriteSample(configPath string) error {
	data, err := yaml.Marshal(SampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
