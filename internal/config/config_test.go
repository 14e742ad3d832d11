package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "symptom-checker/backend/internal/errors"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
}

func loadFresh(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadFresh(t)

	assert.Equal(t, 8000, cfg.AppPort)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, DefaultChatDeployment, cfg.ChatDeployment)
	assert.Equal(t, DefaultChatAPIVersion, cfg.ChatAPIVersion)
	assert.Equal(t, DefaultImageDeployment, cfg.ImageDeployment)
	assert.Equal(t, DefaultImageAPIVersion, cfg.ImageAPIVersion)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, 60*time.Second, cfg.ResponseHeaderTimeout)
	assert.Equal(t, "buffered", cfg.RelayLineMode)
	assert.Empty(t, cfg.AzureBaseURL)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_BASE_URL", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "secret")
	t.Setenv("AZURE_DEPLOYMENT_GPT4", "gpt-4o")
	t.Setenv("UPSTREAM_DIAL_TIMEOUT", "3s")
	t.Setenv("ASSISTANT_TIMEZONE", "UTC")

	cfg := loadFresh(t)

	assert.Equal(t, "https://example.openai.azure.com", cfg.AzureBaseURL)
	assert.Equal(t, "secret", cfg.AzureAPIKey)
	assert.Equal(t, "gpt-4o", cfg.ChatDeployment)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)

	up, err := cfg.Upstream()
	require.NoError(t, err)
	assert.NoError(t, up.Validate())
	assert.Equal(t, "gpt-4o", up.Chat.Name)
	assert.Equal(t, DefaultChatAPIVersion, up.Chat.APIVersion)
	assert.Equal(t, time.UTC, up.Location)
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	t.Setenv("ASSISTANT_TIMEZONE", "Mars/Olympus_Mons")
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestUpstreamConfig_Validate(t *testing.T) {
	t.Run("Missing base URL and key", func(t *testing.T) {
		err := (&UpstreamConfig{}).Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, app_errors.ErrConfiguration))
		assert.Contains(t, err.Error(), "AZURE_OPENAI_API_BASE_URL")
		assert.Contains(t, err.Error(), "AZURE_OPENAI_API_KEY")
	})

	t.Run("Missing key only", func(t *testing.T) {
		err := (&UpstreamConfig{BaseURL: "https://x"}).Validate()
		assert.True(t, errors.Is(err, app_errors.ErrConfiguration))
	})

	t.Run("Complete", func(t *testing.T) {
		assert.NoError(t, (&UpstreamConfig{BaseURL: "https://x", APIKey: "k"}).Validate())
	})
}

func TestUpstreamConfig_NormalizedBaseURL(t *testing.T) {
	assert.Equal(t, "https://x/", (&UpstreamConfig{BaseURL: "https://x"}).NormalizedBaseURL())
	assert.Equal(t, "https://x/", (&UpstreamConfig{BaseURL: "https://x/"}).NormalizedBaseURL())
}

func TestConfig_UpstreamFallbacks(t *testing.T) {
	cfg := &Config{AzureBaseURL: " https://x ", AzureAPIKey: "k"}
	up, err := cfg.Upstream()
	require.NoError(t, err)

	assert.Equal(t, "https://x", up.BaseURL)
	assert.Equal(t, Deployment{Name: DefaultChatDeployment, APIVersion: DefaultChatAPIVersion}, up.Chat)
	assert.Equal(t, Deployment{Name: DefaultImageDeployment, APIVersion: DefaultImageAPIVersion}, up.Image)
	assert.Equal(t, time.Local, up.Location)
}
