package provider

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// chatProvider serves every OpenAI-compatible chat completion API.
type chatProvider struct {
	name     string
	model    string
	endpoint string
	cfg      Config
	client   *openai.Client

	// validate checks credentials; APIs differ in what a cheap check is.
	validate func(ctx context.Context) error
}

func newOpenAI(cfg Config) *chatProvider {
	endpoint := trimmedEndpoint(cfg.Endpoint, defaultOpenAIEndpoint)

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = endpoint
	clientCfg.HTTPClient = cfg.httpClient()

	p := &chatProvider{
		name:     OpenAI,
		model:    cfg.Model,
		endpoint: endpoint,
		cfg:      cfg,
		client:   openai.NewClientWithConfig(clientCfg),
	}
	p.validate = p.listModels
	return p
}

func (p *chatProvider) Name() string  { return p.name }
func (p *chatProvider) Model() string { return p.model }

func (p *chatProvider) Info() ModelInfo {
	return p.cfg.info(p.name, p.model, p.endpoint)
}

// Generate asks the chat completion endpoint for a commit message.
func (p *chatProvider) Generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	return withRetry(ctx, p.cfg.MaxRetries, func() (*models.CommitMessage, error) {
		return p.generate(ctx, req)
	})
}

func (p *chatProvider) generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, p.chatRequest(req))
	if err != nil {
		return nil, fromOpenAIError(p.name, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, emptyResponse(p.name)
	}

	logger.Debug("chat completion finished",
		"provider", p.name,
		"model", p.model,
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return p.cfg.finish(p.name, p.model, resp.Choices[0].Message.Content, usage{
		input:  resp.Usage.PromptTokens,
		output: resp.Usage.CompletionTokens,
		total:  resp.Usage.TotalTokens,
	}), nil
}

func (p *chatProvider) chatRequest(req Request) openai.ChatCompletionRequest {
	r := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	}
	// Reasoning models only accept max_completion_tokens and the default temperature.
	if isReasoningModel(p.model) {
		r.MaxCompletionTokens = p.cfg.MaxTokens
		return r
	}
	r.MaxTokens = p.cfg.MaxTokens
	r.Temperature = float32(p.cfg.Temperature)
	return r
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// ValidateCredentials performs a cheap authenticated request.
func (p *chatProvider) ValidateCredentials(ctx context.Context) error {
	return p.validate(ctx)
}

// listModels verifies the key through the free models endpoint.
func (p *chatProvider) listModels(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fromOpenAIError(p.name, err)
	}
	return nil
}

// tinyCompletion verifies the key with a minimal completion, for APIs whose
// model listing does not require authentication.
func (p *chatProvider) tinyCompletion(ctx context.Context) error {
	_, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "test"}},
		MaxTokens: 5,
	})
	if err != nil {
		return fromOpenAIError(p.name, err)
	}
	return nil
}
