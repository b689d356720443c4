package models

import "github.com/cockroachdb/errors"

// Sentinel errors shared across packages. Callers wrap them with context
// and hints; checks use errors.Is.
var (
	ErrNotRepository        = errors.New("not a git repository")
	ErrNoStagedChanges      = errors.New("no staged changes found")
	ErrProvider             = errors.New("AI provider error")
	ErrInvalidAPIKey        = errors.New("invalid API key")
	ErrMissingAPIKey        = errors.New("API key not configured")
	ErrConfiguration        = errors.New("invalid configuration")
	ErrCostLimitExceeded    = errors.New("monthly cost limit exceeded")
	ErrInvalidCommitMessage = errors.New("invalid commit message")
	ErrUnknownProvider      = errors.New("unknown AI provider")
	ErrEmptyResponse        = errors.New("empty response from AI provider")
)
