package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

// GenerationSpinner animates while suggestions are generated and tracks the
// running attempt, failed attempts and cancellation.
type GenerationSpinner struct {
	spinner    spinner.Model
	style      lipgloss.Style
	attempt    int
	total      int
	failed     int
	cancelling bool
}

// NewGenerationSpinner creates a spinner that has not started an attempt yet.
func NewGenerationSpinner() GenerationSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return GenerationSpinner{
		spinner: s,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// AttemptLabel is the progress text for one attempt.
func AttemptLabel(attempt, total int) string {
	return fmt.Sprintf("Generating suggestion %d/%d...", attempt, total)
}

// StartAttempt moves the counter to attempt of total. It is ignored once
// cancelling.
func (g *GenerationSpinner) StartAttempt(attempt, total int) {
	if g.cancelling {
		return
	}
	g.attempt = attempt
	g.total = total
}

// FailAttempt counts a failed attempt.
func (g *GenerationSpinner) FailAttempt() {
	g.failed++
}

// Cancel switches to the cancelling state.
func (g *GenerationSpinner) Cancel() {
	g.cancelling = true
}

// Cancelling reports whether Cancel was called.
func (g GenerationSpinner) Cancelling() bool {
	return g.cancelling
}

// Failed returns the number of failed attempts.
func (g GenerationSpinner) Failed() int {
	return g.failed
}

// Label returns the current status text.
func (g GenerationSpinner) Label() string {
	switch {
	case g.cancelling:
		return "Cancelling..."
	case g.attempt == 0:
		return "Generating commit message..."
	default:
		return AttemptLabel(g.attempt, g.total)
	}
}

// Init starts the animation.
func (g GenerationSpinner) Init() tea.Cmd {
	return g.spinner.Tick
}

// Update handles spinner tick messages.
func (g GenerationSpinner) Update(msg tea.Msg) (GenerationSpinner, tea.Cmd) {
	var cmd tea.Cmd
	g.spinner, cmd = g.spinner.Update(msg)
	return g, cmd
}

// View renders the spinner, its label and the failure count.
func (g GenerationSpinner) View() string {
	view := g.spinner.View() + " " + g.style.Render(g.Label())
	if g.failed > 0 {
		view += " " + styles.WarningTextStyle.Render(fmt.Sprintf("(%d failed)", g.failed))
	}
	return view
}

// Tick returns the tick command for the spinner.
func (g GenerationSpinner) Tick() tea.Cmd {
	return g.spinner.Tick
}
