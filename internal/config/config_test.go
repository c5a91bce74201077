// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

const validConfig = `
server:
  host: "127.0.0.1"
  port: 9090
  mode: "debug"
mistral:
  api_key: "test-mistral-key"  # pragma: allowlist secret
  api_url: "https://api.mistral.ai/v1"
database:
  path: "./test.db"
auth:
  jwt_secret: "test-jwt-secret"  # pragma: allowlist secret
  token_ttl: "12h"
otp:
  ttl: "10m"
rate_limit:
  requests: 5
  window: "1m"
logging:
  level: "debug"
  format: "text"
`

func TestLoadConfig(t *testing.T) {
	configPath := writeTestConfig(t, validConfig)

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1', got '%s'", config.Server.Host)
	}
	if config.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", config.Server.Port)
	}
	if config.Mistral.APIKey != "test-mistral-key" {
		t.Errorf("Expected Mistral API key 'test-mistral-key', got '%s'", config.Mistral.APIKey)
	}
	if config.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("Expected token TTL 12h, got %s", config.Auth.TokenTTL)
	}
	if config.OTP.TTL != 10*time.Minute {
		t.Errorf("Expected OTP TTL 10m, got %s", config.OTP.TTL)
	}
	if config.RateLimit.Requests != 5 {
		t.Errorf("Expected rate limit 5, got %d", config.RateLimit.Requests)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configPath := writeTestConfig(t, `
mistral:
  api_key: "test-key"  # pragma: allowlist secret
auth:
  jwt_secret: "test-secret"  # pragma: allowlist secret
`)

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.Server.Port)
	}
	if config.Mistral.APIURL != "https://api.mistral.ai/v1" {
		t.Errorf("Expected default Mistral URL, got '%s'", config.Mistral.APIURL)
	}
	if config.RateLimit.Requests != 20 {
		t.Errorf("Expected default rate limit 20, got %d", config.RateLimit.Requests)
	}
	if config.RateLimit.Window != 15*time.Minute {
		t.Errorf("Expected default rate window 15m, got %s", config.RateLimit.Window)
	}
	if config.OTP.TTL != 15*time.Minute {
		t.Errorf("Expected default OTP TTL 15m, got %s", config.OTP.TTL)
	}
	if config.Redis.Enabled {
		t.Error("Expected redis disabled by default")
	}
	if config.Logging.Level != "info" || config.Logging.Format != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", config.Logging.Level, config.Logging.Format)
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	configPath := writeTestConfig(t, validConfig)

	t.Setenv("MISTRAL_API_KEY", "env-mistral-key")
	t.Setenv("JWT_SECRET", "env-jwt-secret")
	t.Setenv("DATABASE_PATH", "/tmp/env.db")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Mistral.APIKey != "env-mistral-key" {
		t.Errorf("Expected env Mistral key, got '%s'", config.Mistral.APIKey)
	}
	if config.Auth.JWTSecret != "env-jwt-secret" {
		t.Errorf("Expected env JWT secret, got '%s'", config.Auth.JWTSecret)
	}
	if config.Database.Path != "/tmp/env.db" {
		t.Errorf("Expected env database path, got '%s'", config.Database.Path)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected env log level 'warn', got '%s'", config.Logging.Level)
	}
}

func TestValidation_MissingRequiredFields(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  port: 8080
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for missing required fields")
	}
	if !strings.Contains(err.Error(), "mistral.api_key") {
		t.Errorf("Expected mistral.api_key in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "auth.jwt_secret") {
		t.Errorf("Expected auth.jwt_secret in error, got: %v", err)
	}
}

func TestValidation_InvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		override string
		field    string
	}{
		{
			name:     "invalid port",
			override: "server:\n  port: 99999\n",
			field:    "server.port",
		},
		{
			name:     "invalid mode",
			override: "server:\n  mode: \"production\"\n",
			field:    "server.mode",
		},
		{
			name:     "invalid log level",
			override: "logging:\n  level: \"verbose\"\n",
			field:    "logging.level",
		},
		{
			name:     "invalid log format",
			override: "logging:\n  format: \"xml\"\n",
			field:    "logging.format",
		},
		{
			name:     "redis enabled without url",
			override: "redis:\n  enabled: true\n  url: \"\"\n",
			field:    "redis.url",
		},
	}

	base := `
mistral:
  api_key: "test-key"  # pragma: allowlist secret
auth:
  jwt_secret: "test-secret"  # pragma: allowlist secret
`

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := writeTestConfig(t, base+tc.override)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("Expected %s in error, got: %v", tc.field, err)
			}
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for explicitly named missing config file")
	}
}

func TestLoadWithOptions_SkipValidation(t *testing.T) {
	configPath := writeTestConfig(t, "server:\n  port: 8080\n")

	config, err := LoadWithOptions(LoadOptions{ConfigPath: configPath, ValidateRequired: false})
	if err != nil {
		t.Fatalf("Expected load without validation to succeed: %v", err)
	}
	if config.Mistral.APIKey != "" {
		t.Error("Expected empty API key to pass without validation")
	}
}

func TestMaskSensitiveValues(t *testing.T) {
	config := &Config{
		Mistral: MistralConfig{APIKey: "sk-1234567890abcdef"},
		Auth:    AuthConfig{JWTSecret: "short"},
		Mail:    MailConfig{Password: "mailpassword123"},
	}

	masked := config.MaskSensitiveValues()

	if masked.Mistral.APIKey != "sk-12345***********" {
		t.Errorf("Expected masked API key, got '%s'", masked.Mistral.APIKey)
	}
	if masked.Auth.JWTSecret != "*****" {
		t.Errorf("Expected fully masked short secret, got '%s'", masked.Auth.JWTSecret)
	}
	if masked.Mail.Password != "mailpass*******" {
		t.Errorf("Expected masked mail password, got '%s'", masked.Mail.Password)
	}

	// Original untouched
	if config.Mistral.APIKey != "sk-1234567890abcdef" {
		t.Error("Expected original config unchanged")
	}
}

func TestWatchConfig(t *testing.T) {
	configPath := writeTestConfig(t, validConfig)

	reloaded := make(chan *Config, 1)
	if err := WatchConfig(configPath, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("WatchConfig failed: %v", err)
	}

	updated := strings.Replace(validConfig, "port: 9090", "port: 9191", 1)
	if err := os.WriteFile(configPath, []byte(updated), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	select {
	case c := <-reloaded:
		if c.Server.Port != 9191 {
			t.Errorf("Expected reloaded port 9191, got %d", c.Server.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for config reload")
	}
}
