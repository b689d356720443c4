package prompt

import (
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

// Vars are the values available to custom templates.
type Vars struct {
	Files     string
	Additions int
	Deletions int
	Diff      string
	TicketID  string
}

var customTemplates = map[string]*template.Template{
	"simple": template.Must(template.New("simple").Parse(`Generate a commit message for:
Files: {{.Files}}
Diff:
{{.Diff}}
`)),
	"detailed": template.Must(template.New("detailed").Parse(`Analyze these code changes and write a detailed commit message:

Files modified: {{.Files}}
Lines added: {{.Additions}}
Lines deleted: {{.Deletions}}

Changes:
{{.Diff}}

Include:
1. A clear summary line
2. Detailed explanation of what changed
3. Reason for the change
`)),
	"jira": template.Must(template.New("jira").Parse(`Generate a commit message with JIRA ticket reference:

Ticket: {{.TicketID}}
Files: {{.Files}}
Changes:
{{.Diff}}

Format: [{{.TicketID}}] <type>: <description>
`)),
}

var ticketPattern = regexp.MustCompile(`[A-Z][A-Z0-9]+-[0-9]+`)

// TemplateNames returns the names of the built-in custom templates.
func TemplateNames() []string {
	names := make([]string, 0, len(customTemplates))
	for name := range customTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TicketFromBranch extracts a ticket key such as "PROJ-123" from a branch name.
func TicketFromBranch(branch string) string {
	return ticketPattern.FindString(strings.ToUpper(branch))
}

// BuildCustomPrompt renders the named custom template for a staged diff.
func BuildCustomPrompt(name string, summary *models.DiffSummary, ticketID string) (string, error) {
	tmpl, ok := customTemplates[name]
	if !ok {
		return "", errors.WithHintf(
			errors.Mark(errors.Newf("unknown template %q", name), models.ErrConfiguration),
			"available templates: %s", strings.Join(TemplateNames(), ", "))
	}
	if name == "jira" && ticketID == "" {
		return "", errors.WithHint(
			errors.Mark(errors.New("the jira template needs a ticket id"), models.ErrConfiguration),
			"export D2C_TICKET_ID='PROJ-123' or name your branch after the ticket")
	}

	vars := Vars{
		Files:     strings.Join(summary.Files, ", "),
		Additions: summary.Additions,
		Deletions: summary.Deletions,
		Diff:      TruncateDiff(summary.Text, MaxDiffChars),
		TicketID:  ticketID,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", errors.Wrapf(err, "render template %s", name)
	}
	return b.String(), nil
}
