// Package config handles configuration loading and management for checkpoint.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for checkpoint.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	AWS       AWSConfig       `mapstructure:"aws"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Verify    VerifyConfig    `mapstructure:"verify"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AWSConfig holds AWS Bedrock settings.
type AWSConfig struct {
	UseBedrock bool   `mapstructure:"use_bedrock"`
	Region     string `mapstructure:"region"`
	Profile    string `mapstructure:"profile"`
}

// GitHubConfig holds GitHub API settings. The token is the application's
// credential used for evidence gathering, never an end user's PAT.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// VerifyConfig holds verification loop settings.
type VerifyConfig struct {
	MaxIterations      int     `mapstructure:"max_iterations"`
	Temperature        float64 `mapstructure:"temperature"`
	MaxTokens          int64   `mapstructure:"max_tokens"`
	RateLimitPerMinute int     `mapstructure:"rate_limit_per_minute"`
	HistoryLimit       int     `mapstructure:"history_limit"`
}

// TimeoutsConfig holds per-call network timeouts.
type TimeoutsConfig struct {
	Model  time.Duration `mapstructure:"model"`
	GitHub time.Duration `mapstructure:"github"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GITHUB_TOKEN)
// 2. Project config (.checkpoint.yaml in current directory or parent)
// 3. User config (~/.config/checkpoint/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("github.token", "GITHUB_TOKEN", "GIT_ACCESS_TOKEN")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("aws.use_bedrock", cfg.AWS.UseBedrock)
	v.Set("aws.region", cfg.AWS.Region)
	v.Set("aws.profile", cfg.AWS.Profile)
	v.Set("github.token", cfg.GitHub.Token)
	v.Set("verify.max_iterations", cfg.Verify.MaxIterations)
	v.Set("verify.temperature", cfg.Verify.Temperature)
	v.Set("verify.max_tokens", cfg.Verify.MaxTokens)
	v.Set("verify.rate_limit_per_minute", cfg.Verify.RateLimitPerMinute)
	v.Set("verify.history_limit", cfg.Verify.HistoryLimit)
	v.Set("timeouts.model", cfg.Timeouts.Model.String())
	v.Set("timeouts.github", cfg.Timeouts.GitHub.String())
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")

	v.SetDefault("aws.use_bedrock", false)
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")

	v.SetDefault("github.token", "")

	// Verification loop defaults. The iteration cap bounds cost and
	// latency; temperature 0 keeps verdicts reproducible for the same diff.
	v.SetDefault("verify.max_iterations", 5)
	v.SetDefault("verify.temperature", 0.0)
	v.SetDefault("verify.max_tokens", 4000)
	v.SetDefault("verify.rate_limit_per_minute", 20)
	v.SetDefault("verify.history_limit", 20)

	v.SetDefault("timeouts.model", "60s")
	v.SetDefault("timeouts.github", "30s")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for checkpoint.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "checkpoint")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "checkpoint")
	}
	return filepath.Join(home, ".config", "checkpoint")
}

// findProjectConfig searches for .checkpoint.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".checkpoint.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Verify: VerifyConfig{
			MaxIterations:      5,
			Temperature:        0.0,
			MaxTokens:          4000,
			RateLimitPerMinute: 20,
			HistoryLimit:       20,
		},
		Timeouts: TimeoutsConfig{
			Model:  60 * time.Second,
			GitHub: 30 * time.Second,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
