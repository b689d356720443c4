package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

func fastRetries(t *testing.T) {
	t.Helper()
	initial, maxInterval := retryInitialInterval, retryMaxInterval
	retryInitialInterval, retryMaxInterval = time.Millisecond, 5*time.Millisecond
	t.Cleanup(func() {
		retryInitialInterval, retryMaxInterval = initial, maxInterval
	})
}

func testConfig(name, endpoint string) Config {
	return Config{
		Name:             name,
		Model:            "gpt-4",
		APIKey:           "sk-test",
		Endpoint:         endpoint,
		MaxTokens:        200,
		Temperature:      0.7,
		Timeout:          5 * time.Second,
		MaxRetries:       3,
		MaxSubjectLength: 72,
	}
}

func chatResponse(content string, prompt, completion int) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     prompt,
			"completion_tokens": completion,
			"total_tokens":      prompt + completion,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantName string
		wantErr  error
	}{
		{name: "DefaultsToOpenAI", provider: "", apiKey: "k", wantName: OpenAI},
		{name: "OpenAI", provider: "openai", apiKey: "k", wantName: OpenAI},
		{name: "CaseInsensitive", provider: "Gemini", apiKey: "k", wantName: Gemini},
		{name: "OpenRouter", provider: "openrouter", apiKey: "k", wantName: OpenRouter},
		{name: "Anthropic", provider: "anthropic", apiKey: "k", wantName: Anthropic},
		{name: "MissingKey", provider: "openai", wantErr: models.ErrMissingAPIKey},
		{name: "Unknown", provider: "mistral", apiKey: "k", wantErr: models.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.provider, "")
			cfg.APIKey = tt.apiKey
			p, err := New(cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.NotEmpty(t, errors.GetAllHints(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestModelFallbacks(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{OpenRouter, "gpt-4", DefaultOpenRouterModel},
		{OpenRouter, "anthropic/claude-3-haiku", "anthropic/claude-3-haiku"},
		{Gemini, "gpt-4", DefaultGeminiModel},
		{Gemini, "gemini-1.5-flash", "gemini-1.5-flash"},
		{Anthropic, "gpt-4", DefaultAnthropicModel},
		{Anthropic, "claude-3-opus-20240229", "claude-3-opus-20240229"},
		{OpenAI, "gpt-4o", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			cfg := testConfig(tt.provider, "")
			cfg.Model = tt.model
			p, err := New(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Model())
			assert.Equal(t, tt.want, p.Info().Model)
		})
	}
}

func TestInfo(t *testing.T) {
	p, err := New(testConfig(OpenAI, "http://localhost:9999/v1/"))
	require.NoError(t, err)

	info := p.Info()
	assert.Equal(t, OpenAI, info.Provider)
	assert.Equal(t, "gpt-4", info.Model)
	assert.Equal(t, 200, info.MaxTokens)
	assert.InDelta(t, 0.7, info.Temperature, 1e-9)
	assert.Equal(t, "http://localhost:9999/v1", info.Endpoint)
}

func TestOpenAI_Generate(t *testing.T) {
	var gotAuth string
	var gotBody struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, chatResponse("feat(auth): add login\n\n- Add handler", 1000, 500))
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenAI, srv.URL))
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4", gotBody.Model)
	assert.Equal(t, 200, gotBody.MaxTokens)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "user", gotBody.Messages[1].Content)

	assert.Equal(t, "feat(auth): add login", msg.Subject)
	assert.Equal(t, "- Add handler", msg.Body)
	assert.Equal(t, OpenAI, msg.Provider)
	assert.Equal(t, 1000, msg.InputTokens)
	assert.Equal(t, 500, msg.OutputTokens)
	assert.Equal(t, 1500, msg.TotalTokens)
	assert.InDelta(t, 0.06, msg.Cost, 1e-9)
}

func TestOpenAI_InvalidKey(t *testing.T) {
	fastRetries(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenAI, srv.URL))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidAPIKey))
	assert.Contains(t, err.Error(), "Incorrect API key")
	assert.Equal(t, int32(1), calls.Load(), "auth failures are not retried")
}

func TestOpenAI_RetriesServerErrors(t *testing.T) {
	fastRetries(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error": map[string]any{"message": "overloaded"},
			})
			return
		}
		writeJSON(w, http.StatusOK, chatResponse("fix: handle nil", 10, 5))
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenAI, srv.URL))
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{UserPrompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fix: handle nil", msg.Subject)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAI_RetriesExhausted(t *testing.T) {
	fastRetries(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	cfg := testConfig(OpenAI, srv.URL)
	cfg.MaxRetries = 2
	p, err := New(cfg)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrProvider))
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAI_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatResponse("   ", 1, 0))
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenAI, srv.URL))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyResponse))
	assert.True(t, errors.Is(err, models.ErrProvider))
}

func TestOpenAI_ValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "bad key"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": []any{}})
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenAI, srv.URL))
	require.NoError(t, err)
	require.NoError(t, p.ValidateCredentials(context.Background()))

	cfg := testConfig(OpenAI, srv.URL)
	cfg.APIKey = "wrong"
	p, err = New(cfg)
	require.NoError(t, err)
	err = p.ValidateCredentials(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidAPIKey))
}

func TestOpenRouter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, openRouterReferer, r.Header.Get("HTTP-Referer"))
		assert.Equal(t, openRouterTitle, r.Header.Get("X-Title"))

		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, DefaultOpenRouterModel, body.Model)

		writeJSON(w, http.StatusOK, chatResponse("chore: tidy", 100, 20))
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenRouter, srv.URL))
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{UserPrompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "chore: tidy", msg.Subject)
	assert.Equal(t, OpenRouter, msg.Provider)
	assert.Zero(t, msg.Cost, "free models cost nothing")
}

func TestOpenRouter_ValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MaxTokens int `json:"max_tokens"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, 5, body.MaxTokens)
		writeJSON(w, http.StatusOK, chatResponse("ok", 1, 1))
	}))
	defer srv.Close()

	p, err := New(testConfig(OpenRouter, srv.URL))
	require.NoError(t, err)
	assert.NoError(t, p.ValidateCredentials(context.Background()))
}

func TestGemini_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-goog-api-key"))

		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		assert.Equal(t, "system\n\nuser", body.Contents[0].Parts[0].Text)
		assert.Equal(t, 200, body.GenerationConfig.MaxOutputTokens)

		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "docs: update readme"}}},
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount": 40, "candidatesTokenCount": 10, "totalTokenCount": 50,
			},
		})
	}))
	defer srv.Close()

	cfg := testConfig(Gemini, srv.URL)
	cfg.Model = "gemini-1.5-flash"
	p, err := New(cfg)
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, "docs: update readme", msg.Subject)
	assert.Equal(t, 40, msg.InputTokens)
	assert.Equal(t, 10, msg.OutputTokens)
	assert.Equal(t, 50, msg.TotalTokens)
}

func TestGemini_EstimatesTokensWithoutUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "fix: stop crash"}}},
			}},
		})
	}))
	defer srv.Close()

	p, err := New(testConfig(Gemini, srv.URL))
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{SystemPrompt: "a b", UserPrompt: "c d e"})
	require.NoError(t, err)
	assert.Equal(t, 5+3, msg.TotalTokens)
	assert.Zero(t, msg.InputTokens)
}

func TestGemini_Errors(t *testing.T) {
	fastRetries(t)
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "Forbidden", status: http.StatusForbidden, body: `{"error":{"message":"API key not valid"}}`, wantErr: models.ErrInvalidAPIKey},
		{name: "NoCandidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: models.ErrEmptyResponse},
		{name: "BadJSON", status: http.StatusOK, body: `not json`, wantErr: models.ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p, err := New(testConfig(Gemini, srv.URL))
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), Request{UserPrompt: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGemini_ValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models/gemini-pro", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"name": "models/gemini-pro"})
	}))
	defer srv.Close()

	p, err := New(testConfig(Gemini, srv.URL))
	require.NoError(t, err)
	assert.NoError(t, p.ValidateCredentials(context.Background()))
}

func TestAnthropic_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "system", body.System)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		writeJSON(w, http.StatusOK, map[string]any{
			"content": []any{map[string]any{"type": "text", "text": "test(db): cover migrations"}},
			"usage":   map[string]any{"input_tokens": 1000, "output_tokens": 1000},
		})
	}))
	defer srv.Close()

	cfg := testConfig(Anthropic, srv.URL)
	cfg.Model = "claude-3-haiku-20240307"
	p, err := New(cfg)
	require.NoError(t, err)

	msg, err := p.Generate(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, "test(db): cover migrations", msg.Subject)
	assert.Equal(t, 2000, msg.TotalTokens)
	assert.InDelta(t, 0.00025+0.00125, msg.Cost, 1e-9)
}

func TestAnthropic_ValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	}))
	defer srv.Close()

	p, err := New(testConfig(Anthropic, srv.URL))
	require.NoError(t, err)

	err = p.ValidateCredentials(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidAPIKey))
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestGenerate_ContextCanceled(t *testing.T) {
	fastRetries(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom"}})
	}))
	defer srv.Close()

	p, err := New(testConfig(Anthropic, srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Generate(ctx, Request{UserPrompt: "x"})
	require.Error(t, err)
}
