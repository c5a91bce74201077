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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mistral   MistralConfig   `mapstructure:"mistral"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Mail      MailConfig      `mapstructure:"mail"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	External  ExternalConfig  `mapstructure:"external"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// MistralConfig contains Mistral API settings
type MistralConfig struct {
	APIKey string `mapstructure:"api_key"`
	APIURL string `mapstructure:"api_url"`
}

// DatabaseConfig contains sqlite settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains the optional redis OTP store settings
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// AuthConfig contains JWT settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// OTPConfig contains password-reset OTP settings
type OTPConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MailConfig contains outbound mail settings. An empty host selects the
// development log sender.
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// RateLimitConfig contains the chatbot fixed-window limiter settings
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ExternalConfig contains upstream data provider URLs. Empty URLs select
// the built-in static data.
type ExternalConfig struct {
	NewsURL     string `mapstructure:"news_url"`
	MarketURL   string `mapstructure:"market_url"`
	CurrencyURL string `mapstructure:"currency_url"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := setConfigFile(v, opts.ConfigPath); err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("NIVESHPATH")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error if env vars are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// Mistral defaults
	v.SetDefault("mistral.api_url", "https://api.mistral.ai/v1")

	// Database defaults
	v.SetDefault("database.path", "./niveshpath.db")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	// Auth defaults
	v.SetDefault("auth.token_ttl", "24h")

	// OTP defaults
	v.SetDefault("otp.ttl", "15m")

	// Mail defaults
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from", "no-reply@niveshpath.in")

	// Rate limit defaults: 20 chatbot queries per 15 minutes per IP
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", "15m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// setConfigFile sets the configuration file path with fallback logic
func setConfigFile(v *viper.Viper, configPath string) error {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return nil
	}

	// Default fallback locations; a missing file is fine when env vars
	// carry the required values.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return nil
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"MISTRAL_API_KEY": "mistral.api_key",
		"MISTRAL_API_URL": "mistral.api_url",
		"JWT_SECRET":      "auth.jwt_secret",
		"DATABASE_PATH":   "database.path",
		"REDIS_URL":       "redis.url",
		"SMTP_PASSWORD":   "mail.password",
		"LOG_LEVEL":       "logging.level",
		"LOG_FORMAT":      "logging.format",
		"PORT":            "server.port",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errs []ValidationError

	if config.Mistral.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "mistral.api_key",
			Message: "Mistral API key is required. Set via config file or MISTRAL_API_KEY environment variable",
		})
	}

	if config.Mistral.APIURL == "" {
		errs = append(errs, ValidationError{
			Field:   "mistral.api_url",
			Message: "Mistral API URL is required",
		})
	}

	if config.Auth.JWTSecret == "" {
		errs = append(errs, ValidationError{
			Field:   "auth.jwt_secret",
			Message: "JWT secret is required. Set via config file or JWT_SECRET environment variable",
		})
	}

	if config.Auth.TokenTTL <= 0 {
		errs = append(errs, ValidationError{
			Field:   "auth.token_ttl",
			Message: "token TTL must be greater than 0",
		})
	}

	if config.OTP.TTL <= 0 {
		errs = append(errs, ValidationError{
			Field:   "otp.ttl",
			Message: "OTP TTL must be greater than 0",
		})
	}

	if config.Database.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "database.path",
			Message: "database path is required",
		})
	}

	if config.Redis.Enabled && config.Redis.URL == "" {
		errs = append(errs, ValidationError{
			Field:   "redis.url",
			Message: "redis URL is required when redis is enabled",
		})
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	validModes := []string{"debug", "release", "test"}
	if !contains(validModes, config.Server.Mode) {
		errs = append(errs, ValidationError{
			Field:   "server.mode",
			Message: fmt.Sprintf("server mode must be one of: %s", strings.Join(validModes, ", ")),
		})
	}

	if config.RateLimit.Requests <= 0 {
		errs = append(errs, ValidationError{
			Field:   "rate_limit.requests",
			Message: "rate limit requests must be greater than 0",
		})
	}

	if config.RateLimit.Window <= 0 {
		errs = append(errs, ValidationError{
			Field:   "rate_limit.window",
			Message: "rate limit window must be greater than 0",
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errs) > 0 {
		var errorMessages []string
		for _, err := range errs {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	if masked.Mistral.APIKey != "" {
		masked.Mistral.APIKey = maskValue(masked.Mistral.APIKey)
	}
	if masked.Auth.JWTSecret != "" {
		masked.Auth.JWTSecret = maskValue(masked.Auth.JWTSecret)
	}
	if masked.Mail.Password != "" {
		masked.Mail.Password = maskValue(masked.Mail.Password)
	}

	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	if err := setConfigFile(v, configPath); err != nil {
		return err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config: %v\n", err)
			return
		}
		callback(config)
	})

	return nil
}
