package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed when sent again.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// classify marks err with the sentinel matching its status and adds a hint.
func classify(err *StatusError) error {
	switch {
	case err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden:
		return errors.WithHintf(errors.Mark(err, models.ErrInvalidAPIKey),
			"check the %s API key in D2C_API_KEY or the config file", err.Provider)
	case err.StatusCode == http.StatusTooManyRequests:
		return errors.WithHint(errors.Mark(err, models.ErrProvider),
			"the provider is rate limiting requests; wait a moment and try again")
	case err.StatusCode == http.StatusNotFound:
		return errors.WithHint(errors.Mark(err, models.ErrProvider),
			"check that the model name and api_endpoint are correct")
	default:
		return errors.Mark(err, models.ErrProvider)
	}
}

// fromOpenAIError converts go-openai errors into StatusError.
func fromOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classify(&StatusError{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := extractMessage(reqErr.Body)
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return classify(&StatusError{Provider: provider, StatusCode: reqErr.HTTPStatusCode, Message: msg})
	}

	return errors.Mark(errors.Wrapf(err, "%s request failed", provider), models.ErrProvider)
}

// extractMessage pulls a readable message out of a JSON error body. The
// shapes used by OpenAI, Gemini and Anthropic are all tried.
func extractMessage(body []byte) string {
	var parsed struct {
		Error json.RawMessage `json:"error"`
		Message string        `json:"message"`
		Detail  string        `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}

	if len(parsed.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if json.Unmarshal(parsed.Error, &plain) == nil && plain != "" {
			return plain
		}
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Detail
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func emptyResponse(provider string) error {
	return errors.Mark(errors.Wrapf(models.ErrEmptyResponse, "%s", provider), models.ErrProvider)
}
