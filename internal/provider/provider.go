// Package provider talks to the language model APIs that write commit messages.
package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/message"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

// Provider names.
const (
	OpenAI     = "openai"
	OpenRouter = "openrouter"
	Gemini     = "gemini"
	Anthropic  = "anthropic"
)

// Provider generates commit messages from a prompt.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (*models.CommitMessage, error)
	ValidateCredentials(ctx context.Context) error
	Info() ModelInfo
}

// Request is one generation request.
type Request struct {
	Summary      *models.DiffSummary
	SystemPrompt string
	UserPrompt   string
}

// ModelInfo describes the configured model.
type ModelInfo struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	Endpoint    string
}

// Config holds the settings shared by every provider.
type Config struct {
	Name             string
	Model            string
	APIKey           string
	Endpoint         string
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration
	MaxRetries       int
	MaxSubjectLength int

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// New builds the provider named by cfg.Name.
func New(cfg Config) (Provider, error) {
	name := strings.ToLower(cfg.Name)
	if name == "" {
		name = OpenAI
	}

	if cfg.APIKey == "" {
		return nil, errors.WithHint(
			errors.Wrapf(models.ErrMissingAPIKey, "%s", name),
			"export D2C_API_KEY='your-key-here' or set api_key in the config file")
	}

	switch name {
	case OpenAI:
		return newOpenAI(cfg), nil
	case OpenRouter:
		return newOpenRouter(cfg), nil
	case Gemini:
		return newGemini(cfg), nil
	case Anthropic:
		return newAnthropic(cfg), nil
	default:
		return nil, errors.WithHintf(
			errors.Wrapf(models.ErrUnknownProvider, "%q", cfg.Name),
			"supported providers: %s", strings.Join(Names(), ", "))
	}
}

// Names lists the supported provider names.
func Names() []string {
	return []string{OpenAI, Gemini, OpenRouter, Anthropic}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) info(name, model, endpoint string) ModelInfo {
	return ModelInfo{
		Provider:    name,
		Model:       model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Endpoint:    endpoint,
	}
}

// usage is the token accounting reported by an API. Zero input and output
// with a non-zero total means only the total is known.
type usage struct {
	input, output, total int
}

// finish parses text and attaches the accounting fields.
func (c Config) finish(name, model, text string, u usage) *models.CommitMessage {
	msg := message.Parse(text, c.MaxSubjectLength)
	msg.Provider = name
	msg.Model = model

	if u.total == 0 {
		u.total = u.input + u.output
	}
	msg.InputTokens = u.input
	msg.OutputTokens = u.output
	msg.TotalTokens = u.total

	if u.input == 0 && u.output == 0 {
		msg.Cost = CostFromTotal(model, u.total)
	} else {
		msg.Cost = Cost(model, u.input, u.output)
	}
	return msg
}

func trimmedEndpoint(endpoint, fallback string) string {
	if endpoint == "" {
		return fallback
	}
	return strings.TrimRight(endpoint, "/")
}
