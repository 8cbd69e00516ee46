package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DAGSTER_CLOUD_API_TOKEN", "dagster-token")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("MODEL_NAME", "")
	t.Setenv("FETCH_TIMEOUT", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DagsterCloudAPIToken != "dagster-token" {
		t.Errorf("Expected token 'dagster-token', got %s", cfg.DagsterCloudAPIToken)
	}
	if cfg.ModelName != "gemini-2.5-flash" {
		t.Errorf("Expected default model 'gemini-2.5-flash', got %s", cfg.ModelName)
	}
	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %s", cfg.FetchTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MODEL_NAME", "gemini-2.5-pro")
	t.Setenv("FETCH_TIMEOUT", "120")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ModelName != "gemini-2.5-pro" {
		t.Errorf("Expected model 'gemini-2.5-pro', got %s", cfg.ModelName)
	}
	if cfg.FetchTimeout != 120*time.Second {
		t.Errorf("Expected timeout 120s, got %s", cfg.FetchTimeout)
	}
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
	}{
		{name: "not a number", timeout: "soon"},
		{name: "zero", timeout: "0"},
		{name: "negative", timeout: "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("FETCH_TIMEOUT", tt.timeout)
			if _, err := LoadConfig(""); err == nil {
				t.Errorf("Expected error for FETCH_TIMEOUT=%q", tt.timeout)
			}
		})
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	// godotenv does not override variables already present in the
	// environment, so clear them for the duration of the test.
	for _, key := range []string{"DAGSTER_CLOUD_API_TOKEN", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	dir := t.TempDir()
	envFile := filepath.Join(dir, "agent.env")
	content := "DAGSTER_CLOUD_API_TOKEN=file-token\nGEMINI_API_KEY=file-key\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	cfg, err := LoadConfig(envFile)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DagsterCloudAPIToken != "file-token" {
		t.Errorf("Expected token 'file-token', got %s", cfg.DagsterCloudAPIToken)
	}
	if cfg.GeminiAPIKey != "file-key" {
		t.Errorf("Expected key 'file-key', got %s", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for missing env file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid",
			config:  Config{DagsterCloudAPIToken: "t", GeminiAPIKey: "k"},
			wantErr: false,
		},
		{
			name:    "missing dagster token",
			config:  Config{GeminiAPIKey: "k"},
			wantErr: true,
		},
		{
			name:    "missing gemini key",
			config:  Config{DagsterCloudAPIToken: "t"},
			wantErr: true,
		},
		{
			name:    "slack token without channel",
			config:  Config{DagsterCloudAPIToken: "t", GeminiAPIKey: "k", SlackBotToken: "xoxb"},
			wantErr: true,
		},
		{
			name: "slack fully configured",
			config: Config{
				DagsterCloudAPIToken: "t", GeminiAPIKey: "k",
				SlackBotToken: "xoxb", SlackChannel: "#alerts",
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlackEnabled(t *testing.T) {
	cfg := Config{SlackBotToken: "xoxb", SlackChannel: "#alerts"}
	if !cfg.SlackEnabled() {
		t.Error("Expected SlackEnabled to be true")
	}
	if (&Config{SlackBotToken: "xoxb"}).SlackEnabled() {
		t.Error("Expected SlackEnabled to be false without a channel")
	}
}
