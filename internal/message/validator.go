package message

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

// DefaultBodyLineLength is the longest body line ValidateBodyLineLength accepts by default.
const DefaultBodyLineLength = 100

var (
	typePattern = regexp.MustCompile(
		`^(` + strings.Join(models.ConventionalTypes, "|") + `)(\([a-z0-9-]+\))?!?: .+`)
	pastTensePattern = regexp.MustCompile(`(?i)^(\w+)(\([^)]+\))?!?: (added|fixed|changed|updated)\b`)
	breakingFooter   = regexp.MustCompile(`(?m)BREAKING CHANGE: (.+)$`)
	breakingSubject  = regexp.MustCompile(`^\w+!(\(|:)`)
	breakingScoped   = regexp.MustCompile(`^\w+\([^)]*\)!:`)
)

// suggestion rules are checked in order; the first match wins.
var suggestions = []struct {
	pattern *regexp.Regexp
	kind    string
}{
	{regexp.MustCompile(`test_|_test\.|spec\.`), "test"},
	{regexp.MustCompile(`readme|doc|comment`), "docs"},
	{regexp.MustCompile(`package\.json|requirements|setup\.py|dockerfile|go\.mod|makefile`), "build"},
	{regexp.MustCompile(`\.github/workflows|\.gitlab-ci`), "ci"},
	{regexp.MustCompile(`fix|bug|issue|error|crash`), "fix"},
}

// Validator checks commit messages against Conventional Commits.
type Validator struct {
	MaxSubjectLength int
}

// NewValidator returns a validator limiting subjects to maxSubject characters.
func NewValidator(maxSubject int) *Validator {
	return &Validator{MaxSubjectLength: maxSubject}
}

// ValidateConventional reports whether msg is a valid Conventional Commit and
// lists every problem found.
func (v *Validator) ValidateConventional(msg string) (bool, []string) {
	if strings.TrimSpace(msg) == "" {
		return false, []string{"Message is empty"}
	}

	var problems []string
	lines := strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	subject := lines[0]

	if !typePattern.MatchString(subject) {
		problems = append(problems,
			"Subject must start with a valid type: "+strings.Join(models.ConventionalTypes, ", "))
	}

	if !v.ValidateSubjectLength(subject) {
		problems = append(problems, fmt.Sprintf("Subject exceeds %d characters (%d)",
			v.MaxSubjectLength, utf8.RuneCountInString(subject)))
	}

	if strings.HasSuffix(subject, ".") {
		problems = append(problems, "Subject should not end with a period")
	}

	if pastTensePattern.MatchString(subject) {
		problems = append(problems, "Use imperative mood (add, fix, change) not past tense")
	}

	if len(lines) > 1 && lines[1] != "" {
		problems = append(problems, "Separate subject from body with a blank line")
	}

	return len(problems) == 0, problems
}

// ValidateSubjectLength reports whether subject fits the configured limit.
func (v *Validator) ValidateSubjectLength(subject string) bool {
	return utf8.RuneCountInString(subject) <= v.MaxSubjectLength
}

// ValidateBodyLineLength returns the 1-based numbers of body lines longer
// than max.
func ValidateBodyLineLength(body string, max int) (bool, []int) {
	var invalid []int
	for i, line := range strings.Split(body, "\n") {
		if utf8.RuneCountInString(line) > max {
			invalid = append(invalid, i+1)
		}
	}
	return len(invalid) == 0, invalid
}

// ExtractBreakingChange returns the BREAKING CHANGE description, a note when
// the subject carries the "!" marker, or "" when nothing breaks.
func ExtractBreakingChange(msg string) string {
	if m := breakingFooter.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	if breakingSubject.MatchString(msg) || breakingScoped.MatchString(msg) {
		return "Breaking change indicated in subject"
	}
	return ""
}

// SuggestType guesses a commit type from keywords in a diff.
func SuggestType(diff string) string {
	lower := strings.ToLower(diff)
	for _, s := range suggestions {
		if s.pattern.MatchString(lower) {
			return s.kind
		}
	}
	return "feat"
}
