package provider

import (
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterEndpoint = "https://openrouter.ai/api/v1"
	// DefaultOpenRouterModel is used when the configured model has no
	// vendor prefix, which OpenRouter requires.
	DefaultOpenRouterModel = "qwen/qwen3-coder:free"

	openRouterReferer = "https://github.com/maadhav-codes/diff2commit"
	openRouterTitle   = "diff2commit"
)

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func newOpenRouter(cfg Config) *chatProvider {
	endpoint := trimmedEndpoint(cfg.Endpoint, defaultOpenRouterEndpoint)

	model := cfg.Model
	if !strings.Contains(model, "/") {
		model = DefaultOpenRouterModel
	}

	base := cfg.httpClient()
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := *base
	client.Transport = &headerTransport{
		base: transport,
		headers: map[string]string{
			"HTTP-Referer": openRouterReferer,
			"X-Title":      openRouterTitle,
		},
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = endpoint
	clientCfg.HTTPClient = &client

	p := &chatProvider{
		name:     OpenRouter,
		model:    model,
		endpoint: endpoint,
		cfg:      cfg,
		client:   openai.NewClientWithConfig(clientCfg),
	}
	p.validate = p.tinyCompletion
	return p
}
