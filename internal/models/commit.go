// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
)

// ConventionalTypes lists the commit types accepted as Conventional Commits.
var ConventionalTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// CommitMessage is a generated or user-edited commit message together with
// the accounting data of the request that produced it.
type CommitMessage struct {
	Subject string
	Body    string
	Footer  string
	Raw     string

	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Cost         float64
	Provider     string
	Model        string
	Timestamp    time.Time
}

// Format renders the message the way git expects it: subject, blank line,
// body, blank line, footer. Empty parts are omitted.
func (m *CommitMessage) Format() string {
	parts := []string{m.Subject}
	if m.Body != "" {
		parts = append(parts, m.Body)
	}
	if m.Footer != "" {
		parts = append(parts, m.Footer)
	}
	return strings.Join(parts, "\n\n")
}

// IsConventional reports whether the subject starts with a known type.
func (m *CommitMessage) IsConventional() bool {
	for _, t := range ConventionalTypes {
		if strings.HasPrefix(m.Subject, t+":") || strings.HasPrefix(m.Subject, t+"(") ||
			strings.HasPrefix(m.Subject, t+"!:") {
			return true
		}
	}
	return false
}
