package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "GROVER"

var defaults = map[string]any{
	"server.port":                  8080,
	"server.log_level":             "info",
	"database.url":                 "",
	"llm.provider":                 "gemini",
	"llm.gemini_api_key":           "",
	"llm.openai_api_key":           "",
	"llm.model_name":               "gemini-2.0-flash",
	"llm.base_url":                 "",
	"llm.request_timeout_seconds":  120,
	"llm.requests_per_minute":      30,
	"llm.max_output_tokens":        8192,
	"llm.input_cost_per_million":   1.10,
	"llm.output_cost_per_million":  4.40,
	"generation.max_attempts":      3,
	"generation.meta_max_attempts": 2,
	"session.redis_url":            "redis://localhost:6379/0",
	"session.secret":               "",
	"session.ttl_hours":            24,
	"session.cookie_name":          "grover_session",
	"keywords.semrush_api_key":     "",
	"keywords.base_url":            "https://api.semrush.com/",
	"keywords.database":            "us",
	"keywords.display_limit":       30,
	"keywords.refresh_schedule":    "0 3 * * *",
	"community.base_url":           "http://community-db:8000",
	"community.timeout_seconds":    15,
	"tasks.worker_count":           2,
	"tasks.queue_size":             100,
	"tasks.stuck_task_age_minutes": 30,
}

// Load reads the configuration and validates every group. See LoadFor.
func Load() (*Config, error) {
	return LoadFor(AllGroups...)
}

// LoadFor reads configuration from environment variables and optionally config files,
// validating only the listed groups. The remaining groups keep their defaults
// or whatever values were supplied, unchecked.
// A .env file in the working directory is loaded first when present; variables
// already set in the process environment are not overridden by it.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func LoadFor(groups ...Group) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateGroups(&cfg, groups...); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every group of cfg against its struct tags.
func Validate(cfg *Config) error {
	return ValidateGroups(cfg, AllGroups...)
}

// ValidateGroups checks the listed groups of cfg against their struct tags and
// reports all failures together.
func ValidateGroups(cfg *Config, groups ...Group) error {
	validate := validator.New()
	var errs []error
	for _, g := range groups {
		settings, ok := cfg.group(g)
		if !ok {
			return fmt.Errorf("unknown config group %q", g)
		}
		if err := validate.Struct(settings); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}
