// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/maadhav-codes/diff2commit/internal/logger"
)

// Config holds the application configuration.
type Config struct {
	AIProvider       string  `toml:"ai_provider" validate:"oneof=openai gemini openrouter anthropic"`
	AIModel          string  `toml:"ai_model" validate:"required"`
	APIKey           string  `toml:"api_key,omitempty"`
	APIEndpoint      string  `toml:"api_endpoint,omitempty" validate:"omitempty,url"`
	MaxTokens        int     `toml:"max_tokens" validate:"gte=50,lte=1000"`
	Temperature      float64 `toml:"temperature" validate:"gte=0,lte=2"`
	Timeout          int     `toml:"timeout" validate:"gte=5,lte=120"`
	MaxRetries       int     `toml:"max_retries" validate:"gte=1,lte=10"`
	CommitFormat     string  `toml:"commit_format" validate:"oneof=conventional custom"`
	CustomTemplate   string  `toml:"custom_template" validate:"oneof=simple detailed jira"`
	IncludeEmoji     bool    `toml:"include_emoji"`
	MaxSubjectLength int     `toml:"max_subject_length" validate:"gte=50,lte=100"`
	TrackUsage       bool    `toml:"track_usage"`
	CostLimitMonthly float64 `toml:"cost_limit_monthly" validate:"gte=0"`
	Verbose          bool    `toml:"verbose"`
	UsageDBPath      string  `toml:"usage_db,omitempty"`

	// TicketID feeds the jira template. It is only read from the environment.
	TicketID string `toml:"-"`

	path string
}

// Overrides carries command-line flags that take precedence over every
// other source. Zero values leave the loaded setting untouched.
type Overrides struct {
	Provider string
	Model    string
	Verbose  bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AIProvider:       defaultProvider,
		AIModel:          defaultModel,
		MaxTokens:        defaultMaxTokens,
		Temperature:      defaultTemperature,
		Timeout:          int(defaultTimeout / time.Second),
		MaxRetries:       defaultMaxRetries,
		CommitFormat:     defaultCommitFormat,
		CustomTemplate:   defaultCustomTemplate,
		MaxSubjectLength: defaultMaxSubjectLength,
		TrackUsage:       true,
	}
}

// Load builds the configuration from defaults, the TOML file, .env files and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				logger.Warn("Failed to load env file", "path", path, "error", err)
			}
			break
		}
	}

	cfg := Default()
	cfg.path = FilePath()
	if err := cfg.loadFile(cfg.path); err != nil {
		return nil, err
	}
	problems := cfg.applyEnv()

	if cfg.UsageDBPath == "" {
		cfg.UsageDBPath = getDefaultUsageDBPath()
	}
	cfg.UsageDBPath = expandHome(cfg.UsageDBPath)

	if err := cfg.validate(problems); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply merges command-line overrides and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.Provider != "" {
		c.AIProvider = strings.ToLower(o.Provider)
	}
	if o.Model != "" {
		c.AIModel = o.Model
	}
	if o.Verbose {
		c.Verbose = true
	}
	return c.Validate()
}

// FilePath returns the TOML file location, honoring D2C_CONFIG.
func FilePath() string {
	return expandHome(getEnvString(EnvConfigPath, getDefaultConfigPath()))
}

// Path returns the TOML file the configuration was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return getDefaultConfigPath()
	}
	return c.path
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// MaskedAPIKey returns the API key with its middle hidden.
func (c *Config) MaskedAPIKey() string {
	switch {
	case c.APIKey == "":
		return "Not set"
	case len(c.APIKey) <= 12:
		return strings.Repeat("*", len(c.APIKey))
	default:
		return c.APIKey[:8] + "..." + c.APIKey[len(c.APIKey)-4:]
	}
}

// applyEnv overlays D2C_* variables and returns one problem per variable
// that could not be parsed. Such fields keep their previous value.
func (c *Config) applyEnv() []string {
	var problems []string
	check := func(field string, err error) {
		if err != nil {
			problems = append(problems, field+": "+err.Error())
		}
	}

	c.AIProvider = strings.ToLower(getEnvString(EnvProvider, c.AIProvider))
	c.AIModel = getEnvString(EnvModel, c.AIModel)
	c.APIKey = getEnvString(EnvAPIKey, c.APIKey)
	c.APIEndpoint = getEnvString(EnvAPIEndpoint, c.APIEndpoint)
	c.CommitFormat = strings.ToLower(getEnvString(EnvCommitFormat, c.CommitFormat))
	c.CustomTemplate = strings.ToLower(getEnvString(EnvCustomTemplate, c.CustomTemplate))
	c.UsageDBPath = getEnvString(EnvUsageDB, c.UsageDBPath)
	c.TicketID = getEnvString(EnvTicketID, c.TicketID)

	var err error
	c.MaxTokens, err = getEnvInt(EnvMaxTokens, c.MaxTokens)
	check("max_tokens", err)
	c.Temperature, err = getEnvFloat(EnvTemperature, c.Temperature)
	check("temperature", err)
	timeout, err := getEnvDuration(EnvTimeout, c.RequestTimeout())
	c.Timeout = int(timeout / time.Second)
	check("timeout", err)
	c.MaxRetries, err = getEnvInt(EnvMaxRetries, c.MaxRetries)
	check("max_retries", err)
	c.IncludeEmoji, err = getEnvBool(EnvIncludeEmoji, c.IncludeEmoji)
	check("include_emoji", err)
	c.MaxSubjectLength, err = getEnvInt(EnvMaxSubjectLength, c.MaxSubjectLength)
	check("max_subject_length", err)
	c.TrackUsage, err = getEnvBool(EnvTrackUsage, c.TrackUsage)
	check("track_usage", err)
	c.CostLimitMonthly, err = getEnvFloat(EnvCostLimit, c.CostLimitMonthly)
	check("cost_limit_monthly", err)
	c.Verbose, err = getEnvBool(EnvVerbose, c.Verbose)
	check("verbose", err)

	return problems
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "d2c", ".env"))
	}

	return paths
}

// getDefaultConfigPath returns the default path for the TOML file.
func getDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "d2c", "config.toml")
}

// getDefaultUsageDBPath returns the default path for the SQLite database.
func getDefaultUsageDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".local", "share", "d2c", "usage.db")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
// An unparseable value returns the default together with an error.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, errors.Newf("invalid integer %q", value)
	}
	return n, nil
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, errors.Newf("invalid number %q", value)
	}
	return f, nil
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts 1/0, true/false, yes/no, on/off.
func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return defaultValue, errors.Newf("invalid boolean %q", value)
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms", or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return defaultValue, errors.Newf("invalid duration %q", value)
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
