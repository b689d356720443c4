package config

import "time"

// Provider names accepted in ai_provider.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// Commit formats accepted in commit_format.
const (
	FormatConventional = "conventional"
	FormatCustom       = "custom"
)

// Default values
const (
	defaultProvider         = ProviderOpenAI
	defaultModel            = "gpt-4"
	defaultMaxTokens        = 200
	defaultTemperature      = 0.7
	defaultTimeout          = 30 * time.Second
	defaultMaxRetries       = 3
	defaultCommitFormat     = FormatConventional
	defaultCustomTemplate   = "simple"
	defaultMaxSubjectLength = 72
)

// Environment variable names.
const (
	EnvConfigPath       = "D2C_CONFIG"
	EnvUsageDB          = "D2C_USAGE_DB"
	EnvProvider         = "D2C_AI_PROVIDER"
	EnvModel            = "D2C_AI_MODEL"
	EnvAPIKey           = "D2C_API_KEY"
	EnvAPIEndpoint      = "D2C_API_ENDPOINT"
	EnvMaxTokens        = "D2C_MAX_TOKENS"
	EnvTemperature      = "D2C_TEMPERATURE"
	EnvTimeout          = "D2C_TIMEOUT"
	EnvMaxRetries       = "D2C_MAX_RETRIES"
	EnvCommitFormat     = "D2C_COMMIT_FORMAT"
	EnvCustomTemplate   = "D2C_CUSTOM_TEMPLATE"
	EnvIncludeEmoji     = "D2C_INCLUDE_EMOJI"
	EnvMaxSubjectLength = "D2C_MAX_SUBJECT_LENGTH"
	EnvTrackUsage       = "D2C_TRACK_USAGE"
	EnvCostLimit        = "D2C_COST_LIMIT_MONTHLY"
	EnvVerbose          = "D2C_VERBOSE"
	EnvTicketID         = "D2C_TICKET_ID"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderAnthropic}
