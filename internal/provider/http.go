package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

// restClient sends JSON requests to APIs without an official Go client.
type restClient struct {
	provider string
	client   *http.Client
	headers  map[string]string
}

// doJSON sends body (if non-nil) to url and decodes the JSON answer into out.
func (c *restClient) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s request failed", c.provider), models.ErrProvider)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: failed to read response", c.provider), models.ErrProvider)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(&StatusError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: failed to parse response", c.provider), models.ErrProvider)
	}
	return nil
}
