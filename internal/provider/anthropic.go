package provider

import (
	"context"
	"net/http"
	"strings"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com"
	anthropicVersion         = "2023-06-01"
	// DefaultAnthropicModel replaces models that are not Claude models.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

type anthropicProvider struct {
	model    string
	endpoint string
	cfg      Config
	rest     *restClient
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func newAnthropic(cfg Config) *anthropicProvider {
	model := cfg.Model
	if !strings.Contains(strings.ToLower(model), "claude") {
		model = DefaultAnthropicModel
	}
	return &anthropicProvider{
		model:    model,
		endpoint: trimmedEndpoint(cfg.Endpoint, defaultAnthropicEndpoint),
		cfg:      cfg,
		rest: &restClient{
			provider: Anthropic,
			client:   cfg.httpClient(),
			headers: map[string]string{
				"x-api-key":         cfg.APIKey,
				"anthropic-version": anthropicVersion,
			},
		},
	}
}

func (p *anthropicProvider) Name() string  { return Anthropic }
func (p *anthropicProvider) Model() string { return p.model }

func (p *anthropicProvider) Info() ModelInfo {
	return p.cfg.info(Anthropic, p.model, p.endpoint)
}

func (p *anthropicProvider) Generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	return withRetry(ctx, p.cfg.MaxRetries, func() (*models.CommitMessage, error) {
		return p.generate(ctx, req)
	})
}

func (p *anthropicProvider) generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	body := anthropicRequest{
		Model:       p.model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
	}

	var resp anthropicResponse
	if err := p.rest.doJSON(ctx, http.MethodPost, p.endpoint+"/v1/messages", body, &resp); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, emptyResponse(Anthropic)
	}

	return p.cfg.finish(Anthropic, p.model, text.String(), usage{
		input:  resp.Usage.InputTokens,
		output: resp.Usage.OutputTokens,
	}), nil
}

// ValidateCredentials lists models, which requires a valid key.
func (p *anthropicProvider) ValidateCredentials(ctx context.Context) error {
	return p.rest.doJSON(ctx, http.MethodGet, p.endpoint+"/v1/models", nil, nil)
}
