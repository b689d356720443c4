// Package message parses model output into commit messages and checks them
// against Conventional Commits.
package message

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

var footerPrefixes = []string{"BREAKING CHANGE:", "Refs:", "Closes:"}

// Parse splits text into subject, body and footer. The subject is the first
// non-empty line, cut to maxSubject characters; the footer starts at the
// first BREAKING CHANGE:, Refs: or Closes: line and runs to the end.
func Parse(text string, maxSubject int) *models.CommitMessage {
	cleaned := clean(text)

	var subject string
	var body, footer []string
	inBody, inFooter := false, false

	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case subject == "" && trimmed != "":
			subject = trimmed
		case subject == "":
			// leading blank lines
		case !inFooter && isFooterLine(trimmed):
			inFooter = true
			footer = append(footer, trimmed)
		case inFooter:
			footer = append(footer, trimmed)
		case trimmed != "" || inBody:
			inBody = true
			body = append(body, strings.TrimRight(line, " \t"))
		}
	}

	return &models.CommitMessage{
		Subject:   TruncateSubject(subject, maxSubject),
		Body:      strings.TrimSpace(strings.Join(body, "\n")),
		Footer:    strings.TrimSpace(strings.Join(footer, "\n")),
		Raw:       text,
		Timestamp: time.Now(),
	}
}

// TruncateSubject shortens subject to max characters, ending in "...".
func TruncateSubject(subject string, max int) string {
	if max <= 3 || utf8.RuneCountInString(subject) <= max {
		return subject
	}
	return string([]rune(subject)[:max-3]) + "..."
}

func isFooterLine(line string) bool {
	for _, p := range footerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// clean drops markdown fences and an echoed "### Commit Message" heading.
func clean(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if len(kept) == 0 && strings.EqualFold(strings.TrimLeft(trimmed, "# "), "commit message") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
