package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultGeminiModel replaces models that are not Gemini models.
	DefaultGeminiModel = "gemini-pro"
)

type geminiProvider struct {
	model    string
	endpoint string
	cfg      Config
	rest     *restClient
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func newGemini(cfg Config) *geminiProvider {
	model := cfg.Model
	if !strings.Contains(strings.ToLower(model), "gemini") {
		model = DefaultGeminiModel
	}
	return &geminiProvider{
		model:    model,
		endpoint: trimmedEndpoint(cfg.Endpoint, defaultGeminiEndpoint),
		cfg:      cfg,
		rest: &restClient{
			provider: Gemini,
			client:   cfg.httpClient(),
			headers:  map[string]string{"x-goog-api-key": cfg.APIKey},
		},
	}
}

func (p *geminiProvider) Name() string  { return Gemini }
func (p *geminiProvider) Model() string { return p.model }

func (p *geminiProvider) Info() ModelInfo {
	return p.cfg.info(Gemini, p.model, p.endpoint)
}

func (p *geminiProvider) modelURL() string {
	return p.endpoint + "/models/" + url.PathEscape(p.model)
}

func (p *geminiProvider) Generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	return withRetry(ctx, p.cfg.MaxRetries, func() (*models.CommitMessage, error) {
		return p.generate(ctx, req)
	})
}

func (p *geminiProvider) generate(ctx context.Context, req Request) (*models.CommitMessage, error) {
	// Gemini has no system role in generateContent; the prompts are joined.
	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: req.SystemPrompt + "\n\n" + req.UserPrompt}},
		}},
	}
	body.GenerationConfig.Temperature = p.cfg.Temperature
	body.GenerationConfig.MaxOutputTokens = p.cfg.MaxTokens

	var resp geminiResponse
	if err := p.rest.doJSON(ctx, http.MethodPost, p.modelURL()+":generateContent", body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, emptyResponse(Gemini)
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return nil, emptyResponse(Gemini)
	}

	var u usage
	if md := resp.UsageMetadata; md != nil && md.TotalTokenCount > 0 {
		u = usage{input: md.PromptTokenCount, output: md.CandidatesTokenCount, total: md.TotalTokenCount}
	} else {
		u = usage{total: estimateTokens(req.SystemPrompt+" "+req.UserPrompt) + estimateTokens(text)}
	}
	return p.cfg.finish(Gemini, p.model, text, u), nil
}

// ValidateCredentials fetches the model resource, which requires a valid key.
func (p *geminiProvider) ValidateCredentials(ctx context.Context) error {
	return p.rest.doJSON(ctx, http.MethodGet, p.modelURL(), nil, nil)
}

// estimateTokens approximates a token count from whitespace separated words.
func estimateTokens(s string) int {
	return len(strings.Fields(s))
}
