package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/checkpoint/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify checkpoint configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/checkpoint/config.yaml
Project-specific overrides can be placed in .checkpoint.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("aws.use_bedrock: %t\n", cfg.AWS.UseBedrock)
	fmt.Printf("aws.region: %s\n", orUnset(cfg.AWS.Region))
	fmt.Printf("aws.profile: %s\n", orUnset(cfg.AWS.Profile))
	fmt.Printf("github.token: %s\n", config.MaskKey(cfg.GitHub.Token))
	fmt.Printf("verify.max_iterations: %d\n", cfg.Verify.MaxIterations)
	fmt.Printf("verify.temperature: %g\n", cfg.Verify.Temperature)
	fmt.Printf("verify.max_tokens: %d\n", cfg.Verify.MaxTokens)
	fmt.Printf("verify.rate_limit_per_minute: %d\n", cfg.Verify.RateLimitPerMinute)
	fmt.Printf("verify.history_limit: %d\n", cfg.Verify.HistoryLimit)
	fmt.Printf("timeouts.model: %s\n", cfg.Timeouts.Model)
	fmt.Printf("timeouts.github: %s\n", cfg.Timeouts.GitHub)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "aws.use_bedrock":
		return strconv.FormatBool(cfg.AWS.UseBedrock), nil
	case "aws.region":
		return orUnset(cfg.AWS.Region), nil
	case "aws.profile":
		return orUnset(cfg.AWS.Profile), nil
	case "github.token":
		return config.MaskKey(cfg.GitHub.Token), nil
	case "verify.max_iterations":
		return strconv.Itoa(cfg.Verify.MaxIterations), nil
	case "verify.temperature":
		return strconv.FormatFloat(cfg.Verify.Temperature, 'g', -1, 64), nil
	case "verify.max_tokens":
		return strconv.FormatInt(cfg.Verify.MaxTokens, 10), nil
	case "verify.rate_limit_per_minute":
		return strconv.Itoa(cfg.Verify.RateLimitPerMinute), nil
	case "verify.history_limit":
		return strconv.Itoa(cfg.Verify.HistoryLimit), nil
	case "timeouts.model":
		return cfg.Timeouts.Model.String(), nil
	case "timeouts.github":
		return cfg.Timeouts.GitHub.String(), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "aws.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.AWS.UseBedrock = b
	case "aws.region":
		cfg.AWS.Region = value
	case "aws.profile":
		cfg.AWS.Profile = value
	case "github.token":
		cfg.GitHub.Token = value
	case "verify.max_iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid iteration count: %s", value)
		}
		cfg.Verify.MaxIterations = n
	case "verify.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid temperature: %s", value)
		}
		cfg.Verify.Temperature = f
	case "verify.max_tokens":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid token count: %s", value)
		}
		cfg.Verify.MaxTokens = n
	case "verify.rate_limit_per_minute":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid rate limit: %s", value)
		}
		cfg.Verify.RateLimitPerMinute = n
	case "verify.history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid history limit: %s", value)
		}
		cfg.Verify.HistoryLimit = n
	case "timeouts.model":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Timeouts.Model = d
	case "timeouts.github":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Timeouts.GitHub = d
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
