// Package config loads agent configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultModelName = "gemini-2.5-flash"
const defaultFetchTimeout = 60 * time.Second

// Config holds everything the agent reads from the environment.
type Config struct {
	DagsterCloudAPIToken string        // Dagster Cloud API token, sent on every GraphQL request
	GeminiAPIKey         string        // Gemini API key for the diagnosis call
	ModelName            string        // Gemini model name
	FetchTimeout         time.Duration // Overall pipeline timeout
	SlackBotToken        string        // Optional: post the diagnosis to Slack
	SlackChannel         string        // Channel for the optional Slack post
}

// LoadConfig loads configuration from environment variables. When envFile is
// non-empty it is loaded first and must exist; otherwise a ./.env file is
// loaded if present.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// .env is optional
		_ = godotenv.Load()
	}

	config := &Config{
		DagsterCloudAPIToken: os.Getenv("DAGSTER_CLOUD_API_TOKEN"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		ModelName:            os.Getenv("MODEL_NAME"),
		SlackBotToken:        os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:         os.Getenv("SLACK_CHANNEL"),
	}
	if config.ModelName == "" {
		config.ModelName = defaultModelName
	}

	config.FetchTimeout = defaultFetchTimeout
	if timeout := os.Getenv("FETCH_TIMEOUT"); timeout != "" {
		val, err := strconv.Atoi(timeout)
		if err != nil || val <= 0 {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT %q: must be a positive number of seconds", timeout)
		}
		config.FetchTimeout = time.Duration(val) * time.Second
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DagsterCloudAPIToken == "" {
		return fmt.Errorf("DAGSTER_CLOUD_API_TOKEN is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SlackBotToken != "" && c.SlackChannel == "" {
		return fmt.Errorf("SLACK_CHANNEL is required when SLACK_BOT_TOKEN is set")
	}
	return nil
}

// SlackEnabled reports whether the optional Slack notification is configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}
