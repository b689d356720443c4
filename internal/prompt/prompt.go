// Package prompt builds the text sent to the language model.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

const (
	// MaxListedFiles is how many staged paths are spelled out in a prompt.
	MaxListedFiles = 10
	// MaxDiffChars caps the diff embedded in a prompt.
	MaxDiffChars = 3000

	truncationMarker = "\n\n... (diff truncated)"
)

// System instructs the model to answer with a Conventional Commits message.
const System = `You are an expert Git assistant. Read the staged diff you are given and write one commit message for it in the Conventional Commits format.

Reply with the commit message only. Do not add labels such as "Title:" or "Body:", explanations, or any text around the message.

Structure:
- Subject line: <type>(<scope>): <subject>
  - Write the subject in the imperative mood ("add", "fix", "remove"), at most 50 characters, without a trailing period.
  - The scope names the affected area: a package, module, component or feature.
- Body (optional): short bullet points starting with "- " and an action verb, each under 72 characters, covering what changed and why.
- Breaking changes: a footer starting with "BREAKING CHANGE:" that explains what breaks and how to migrate.

Types:
- feat: a new feature or significant enhancement
- fix: a bug fix
- docs: documentation only
- style: formatting or whitespace, no behavior change
- refactor: restructuring that neither fixes a bug nor adds a feature
- perf: a performance improvement
- test: adding or changing tests
- build: build system or dependency changes
- ci: continuous integration configuration
- chore: maintenance that fits no other type
- revert: reverting an earlier commit

Reading the diff:
- Let file paths tell you the scope.
- When a diff mixes kinds of change, pick the type of the main intent and mention the rest in the body.
- Describe only what the diff shows. Name the functions, types or files that changed.

Example:
feat(auth): add password reset flow

- Add reset token issuing and email delivery
- Rate limit the reset endpoint per address
- Document the reset flow in the user guide`

// BuildCommitPrompt renders the user prompt for a staged diff.
func BuildCommitPrompt(summary *models.DiffSummary, includeEmoji bool) string {
	var b strings.Builder

	b.WriteString("Analyze the following staged changes and generate a Conventional Commit message.\n\n")
	fmt.Fprintf(&b, "Files changed (%d):\n", len(summary.Files))
	b.WriteString(FileList(summary))
	b.WriteString("\n\nStatistics:\n")
	fmt.Fprintf(&b, "  +%d additions, -%d deletions\n\n", summary.Additions, summary.Deletions)
	b.WriteString("Git diff:\n```\n")
	b.WriteString(TruncateDiff(summary.Text, MaxDiffChars))
	b.WriteString("\n```\n")
	if includeEmoji {
		b.WriteString("\nInclude an appropriate emoji at the start of the commit message.\n")
	}
	b.WriteString("\n### Commit Message\n")

	return b.String()
}

// FileList lists up to MaxListedFiles paths as "  <type> <path>" lines and
// summarizes the remainder.
func FileList(summary *models.DiffSummary) string {
	lines := make([]string, 0, MaxListedFiles+1)
	for i, path := range summary.Files {
		if i == MaxListedFiles {
			lines = append(lines, fmt.Sprintf("  ... and %d more files", len(summary.Files)-MaxListedFiles))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s %s", string(summary.ChangeType(path)), path))
	}
	return strings.Join(lines, "\n")
}

// TruncateDiff cuts diff to limit characters and marks the cut.
func TruncateDiff(diff string, limit int) string {
	if utf8.RuneCountInString(diff) <= limit {
		return diff
	}
	return string([]rune(diff)[:limit]) + truncationMarker
}
