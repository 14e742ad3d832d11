package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	app_errors "symptom-checker/backend/internal/errors"
)

const (
	DefaultChatDeployment  = "gpt-4"
	DefaultChatAPIVersion  = "2024-02-15-preview"
	DefaultImageDeployment = "dall-e-3"
	DefaultImageAPIVersion = "2024-02-01"
)

// Config is the process-wide configuration, loaded once at start-up.
type Config struct {
	AppPort  int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	AzureBaseURL          string        `mapstructure:"AZURE_OPENAI_API_BASE_URL"`
	AzureAPIKey           string        `mapstructure:"AZURE_OPENAI_API_KEY"`
	ChatDeployment        string        `mapstructure:"AZURE_DEPLOYMENT_GPT4"`
	ChatAPIVersion        string        `mapstructure:"AZURE_DEPLOYMENT_GPT4_VERSION"`
	ImageDeployment       string        `mapstructure:"AZURE_DEPLOYMENT_DALLE3"`
	ImageAPIVersion       string        `mapstructure:"AZURE_DEPLOYMENT_DALLE3_VERSION"`
	DialTimeout           time.Duration `mapstructure:"UPSTREAM_DIAL_TIMEOUT"`
	ResponseHeaderTimeout time.Duration `mapstructure:"UPSTREAM_RESPONSE_HEADER_TIMEOUT"`

	AssistantAppName  string `mapstructure:"ASSISTANT_APP_NAME"`
	AssistantTimezone string `mapstructure:"ASSISTANT_TIMEZONE"`
	RelayLineMode     string `mapstructure:"RELAY_LINE_MODE"`
}

// Deployment names one Azure OpenAI deployment and the API version used to
// call it.
type Deployment struct {
	Name       string
	APIVersion string
}

// UpstreamConfig is everything the dispatcher needs to reach the upstream
// API. It is built once from Config and handed to the dispatcher by pointer.
type UpstreamConfig struct {
	BaseURL  string
	APIKey   string
	Chat     Deployment
	Image    Deployment
	Location *time.Location
	AppName  string
}

// Validate reports ErrConfiguration when the base address or key is absent.
func (u *UpstreamConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(u.BaseURL) == "" {
		missing = append(missing, "AZURE_OPENAI_API_BASE_URL")
	}
	if strings.TrimSpace(u.APIKey) == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not set", app_errors.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizedBaseURL returns the base address with exactly one trailing slash
// appended when it does not already end in one.
func (u *UpstreamConfig) NormalizedBaseURL() string {
	if strings.HasSuffix(u.BaseURL, "/") {
		return u.BaseURL
	}
	return u.BaseURL + "/"
}

// Upstream derives the dispatcher configuration. Empty deployment fields fall
// back to the documented defaults.
func (c *Config) Upstream() (*UpstreamConfig, error) {
	loc, err := loadLocation(c.AssistantTimezone)
	if err != nil {
		return nil, err
	}
	return &UpstreamConfig{
		BaseURL: strings.TrimSpace(c.AzureBaseURL),
		APIKey:  strings.TrimSpace(c.AzureAPIKey),
		Chat: Deployment{
			Name:       orDefault(c.ChatDeployment, DefaultChatDeployment),
			APIVersion: orDefault(c.ChatAPIVersion, DefaultChatAPIVersion),
		},
		Image: Deployment{
			Name:       orDefault(c.ImageDeployment, DefaultImageDeployment),
			APIVersion: orDefault(c.ImageAPIVersion, DefaultImageAPIVersion),
		},
		Location: loc,
		AppName:  c.AssistantAppName,
	}, nil
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("AZURE_OPENAI_API_BASE_URL", "")
	viper.SetDefault("AZURE_OPENAI_API_KEY", "")
	viper.SetDefault("AZURE_DEPLOYMENT_GPT4", DefaultChatDeployment)
	viper.SetDefault("AZURE_DEPLOYMENT_GPT4_VERSION", DefaultChatAPIVersion)
	viper.SetDefault("AZURE_DEPLOYMENT_DALLE3", DefaultImageDeployment)
	viper.SetDefault("AZURE_DEPLOYMENT_DALLE3_VERSION", DefaultImageAPIVersion)
	viper.SetDefault("UPSTREAM_DIAL_TIMEOUT", "10s")
	viper.SetDefault("UPSTREAM_RESPONSE_HEADER_TIMEOUT", "60s")
	viper.SetDefault("ASSISTANT_APP_NAME", "Symptom Checker")
	viper.SetDefault("ASSISTANT_TIMEZONE", "Local")
	viper.SetDefault("RELAY_LINE_MODE", "buffered")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if _, err := loadLocation(cfg.AssistantTimezone); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid ASSISTANT_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
