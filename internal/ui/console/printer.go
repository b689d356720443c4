// Package console renders command output for a line-oriented terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/ui/components"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
	"github.com/maadhav-codes/diff2commit/internal/vcs"
)

// MaxListedFiles caps the staged files shown before the remainder is
// summarized.
const MaxListedFiles = 20

// Printer writes styled output to a writer.
type Printer struct {
	out io.Writer
}

// New creates a printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Println writes a plain line.
func (p *Printer) Println(s string) {
	p.println(s)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.println(styles.ErrorTextStyle.Render("✗ Error: " + msg))
}

// Fail prints err followed by each of its hints.
func (p *Printer) Fail(err error) {
	p.Error(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		p.Info(hint)
	}
}

// Success prints a success line.
func (p *Printer) Success(msg string) {
	p.println(styles.SuccessTextStyle.Render("✓ " + msg))
}

// Info prints an informational line.
func (p *Printer) Info(msg string) {
	p.println(styles.InfoTextStyle.Render("ℹ Info: " + msg))
}

// Warning prints a warning line.
func (p *Printer) Warning(msg string) {
	p.println(styles.WarningTextStyle.Render("⚠ Warning: " + msg))
}

// Repository prints the branch and remote of the repository.
func (p *Printer) Repository(info vcs.Info) {
	p.println(styles.MutedTextStyle.Render(fmt.Sprintf("Repository: %s  Branch: %s  Remote: %s", info.Root, info.Branch, info.Remote)))
}

// StagedChanges prints a table of the staged files and the line statistics.
func (p *Printer) StagedChanges(summary *models.DiffSummary) {
	p.println(styles.SubTitleStyle.Render(fmt.Sprintf("Staged changes (%d files)", len(summary.Files))))

	rows := make([][]string, 0, min(len(summary.Files), MaxListedFiles))
	for i, file := range summary.Files {
		if i == MaxListedFiles {
			break
		}
		ct := summary.ChangeType(file)
		rows = append(rows, []string{styles.GetChangeStyle(string(ct)).Render(string(ct)), file})
	}
	p.println(components.RenderTable([]string{"Type", "File"}, rows))

	if extra := len(summary.Files) - MaxListedFiles; extra > 0 {
		p.println(styles.MutedTextStyle.Render(fmt.Sprintf("... and %d more files", extra)))
	}
	p.println(Stats(summary))
}

// Stats renders the addition and deletion counts.
func Stats(summary *models.DiffSummary) string {
	return styles.SuccessTextStyle.Render(fmt.Sprintf("+%d additions", summary.Additions)) +
		", " +
		styles.ErrorTextStyle.Render(fmt.Sprintf("-%d deletions", summary.Deletions))
}

// Message prints msg in a bordered panel.
func (p *Printer) Message(title string, msg *models.CommitMessage) {
	p.println(MessagePanel(title, msg))
}

// MessagePanel renders msg in a bordered panel with a caption.
func MessagePanel(title string, msg *models.CommitMessage) string {
	var b strings.Builder
	b.WriteString(styles.MessageTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(styles.SubjectStyle.Render(msg.Subject))
	if msg.Body != "" {
		b.WriteString("\n\n" + msg.Body)
	}
	if msg.Footer != "" {
		b.WriteString("\n\n" + msg.Footer)
	}
	if msg.TotalTokens > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.MutedTextStyle.Render(fmt.Sprintf("%s · %s · %s tokens · %s",
			msg.Provider, msg.Model, components.FormatCount(msg.TotalTokens), components.FormatCost(msg.Cost))))
	}
	return styles.MessagePanelStyle.Render(b.String())
}

// Validation prints the result of a Conventional Commits check.
func (p *Printer) Validation(issues []string, breaking string) {
	if len(issues) == 0 {
		p.Success("Commit message follows the Conventional Commits format")
	} else {
		p.Error(fmt.Sprintf("Commit message has %d issue(s)", len(issues)))
		for _, issue := range issues {
			p.println("  - " + issue)
		}
	}
	if breaking != "" {
		p.Warning("Breaking change: " + breaking)
	}
}

// KeyValues prints aligned key/value rows as a table.
func (p *Printer) KeyValues(title string, rows [][]string) {
	if title != "" {
		p.println(styles.SubTitleStyle.Render(title))
	}
	p.println(components.RenderTable([]string{"Setting", "Value"}, rows))
}
