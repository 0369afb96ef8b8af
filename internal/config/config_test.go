package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"JIRA_URL", "ENCODED_JIRA_TOKEN", "CONFLUENCE_URL", "ENCODED_CONFLUENCE_TOKEN"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestClientConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    ClientConfig
		wantField string
	}{
		{name: "valid", config: ClientConfig{BaseURL: "https://example.atlassian.net", AuthToken: "dG9rZW4="}},
		{name: "missing base url", config: ClientConfig{AuthToken: "dG9rZW4="}, wantField: "base URL"},
		{name: "missing token", config: ClientConfig{BaseURL: "https://example.atlassian.net"}, wantField: "auth token"},
		{name: "missing both", config: ClientConfig{}, wantField: "base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(ServiceJira)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, ServiceJira, cfgErr.Service)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Equal(t, "jira "+tt.wantField+" is required", err.Error())
		})
	}
}

func TestClientConfigTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, ClientConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, ClientConfig{TimeoutSeconds: 5}.Timeout())
}

func TestEncodeToken(t *testing.T) {
	assert.Equal(t, "dXNlckBleGFtcGxlLmNvbTpzZWNyZXQ=", EncodeToken("user@example.com", "secret"))
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
jira:
  base_url: https://example.atlassian.net
  auth_token: amlyYS10b2tlbg==
  project_key: PROJ
  transitions:
    close: "41"
confluence:
  base_url: https://example.atlassian.net/wiki
  email: user@example.com
  api_token: secret
  space_key: DOCS
  timeout_seconds: 10
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "amlyYS10b2tlbg==", cfg.Jira.AuthToken)
	assert.Equal(t, "PROJ", cfg.Jira.ProjectKey)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Jira.TimeoutSeconds)
	assert.Equal(t, "41", cfg.Jira.Transitions.Close)
	assert.Equal(t, DefaultOpenTransition, cfg.Jira.Transitions.Open)
	assert.Equal(t, DefaultInProgressTransition, cfg.Jira.Transitions.InProgress)

	assert.Equal(t, EncodeToken("user@example.com", "secret"), cfg.Confluence.AuthToken)
	assert.Equal(t, "DOCS", cfg.Confluence.SpaceKey)
	assert.Equal(t, 10, cfg.Confluence.TimeoutSeconds)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
jira:
  base_url: https://file.atlassian.net
  auth_token: ZmlsZQ==
`)
	t.Setenv("JIRA_URL", "https://env.atlassian.net")
	t.Setenv("ENCODED_CONFLUENCE_TOKEN", "ZW52")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://env.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "ZmlsZQ==", cfg.Jira.AuthToken)
	assert.Equal(t, "ZW52", cfg.Confluence.AuthToken)
}

func TestLoadConfigMissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIRA_URL", "https://env.atlassian.net")
	t.Setenv("ENCODED_JIRA_TOKEN", "ZW52")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Jira.Validate(ServiceJira))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, cfg.Confluence.Validate(ServiceConfluence), &cfgErr)
	assert.Equal(t, "base URL", cfgErr.Field)
}

func TestLoadConfigTokenLookup(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
jira:
  base_url: https://example.atlassian.net
confluence:
  base_url: https://example.atlassian.net/wiki
`)

	var asked []string
	lookup := func(service string) (string, error) {
		asked = append(asked, service)
		if service == ServiceJira {
			return "c3RvcmVk", nil
		}
		return "", errors.New("not found")
	}

	cfg, err := LoadConfig(path, lookup)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{ServiceJira, ServiceConfluence}, asked)
	assert.Equal(t, "c3RvcmVk", cfg.Jira.AuthToken)
	assert.Empty(t, cfg.Confluence.AuthToken)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "jira: [unclosed")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestWriteSampleRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteSample(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	sample := SampleConfig()
	assert.Equal(t, sample.Jira.BaseURL, cfg.Jira.BaseURL)
	assert.Equal(t, sample.Jira.ProjectKey, cfg.Jira.ProjectKey)
	assert.Equal(t, sample.Confluence.SpaceKey, cfg.Confluence.SpaceKey)
	assert.Equal(t, EncodeToken(sample.Jira.Email, sample.Jira.APIToken), cfg.Jira.AuthToken)
}
