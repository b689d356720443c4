// Package progress shows a spinner while commit messages are generated.
package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/services/generate"
	"github.com/maadhav-codes/diff2commit/internal/ui/components"
	"github.com/maadhav-codes/diff2commit/internal/ui/console"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

// Task produces suggestions and reports its progress through report.
type Task func(ctx context.Context, report func(generate.Event)) ([]*models.CommitMessage, error)

type outcome struct {
	messages []*models.CommitMessage
	err      error
}

type eventMsg generate.Event

type doneMsg struct{}

// Model animates a spinner until the task finishes. ctrl+c cancels the task
// and waits for it to return.
type Model struct {
	spinner   components.GenerationSpinner
	events    <-chan generate.Event
	done      <-chan struct{}
	cancel    context.CancelFunc
	interrupt key.Binding
	finished  bool
}

func newModel(events <-chan generate.Event, done <-chan struct{}, cancel context.CancelFunc) Model {
	return Model{
		spinner:   components.NewGenerationSpinner(),
		events:    events,
		done:      done,
		cancel:    cancel,
		interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
	}
}

func waitForEvent(events <-chan generate.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), waitForEvent(m.events), waitForDone(m.done))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.interrupt) && !m.spinner.Cancelling() {
			m.spinner.Cancel()
			m.cancel()
		}
		return m, nil

	case eventMsg:
		var cmd tea.Cmd
		switch msg.Type {
		case generate.EventAttemptStarted:
			m.spinner.StartAttempt(msg.Attempt, msg.Total)
		case generate.EventAttemptFailed:
			m.spinner.FailAttempt()
			cmd = tea.Println(styles.WarningTextStyle.Render(failureLine(generate.Event(msg))))
		}
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case doneMsg:
		m.finished = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.finished {
		return ""
	}
	return m.spinner.View() + "\n"
}

func failureLine(ev generate.Event) string {
	return fmt.Sprintf("⚠ Warning: suggestion %d/%d failed: %v", ev.Attempt, ev.Total, ev.Err)
}

// start runs task in the background. events is closed when task returns,
// done is closed once result is set.
func start(ctx context.Context, task Task) (<-chan generate.Event, <-chan struct{}, *outcome) {
	events := make(chan generate.Event, 2*generate.MaxCount+2)
	done := make(chan struct{})
	result := &outcome{}

	go func() {
		defer close(done)
		result.messages, result.err = task(ctx, func(ev generate.Event) {
			select {
			case events <- ev:
			default:
			}
		})
		close(events)
	}()

	return events, done, result
}

// Run executes task. With interactive set a spinner is shown on out and
// ctrl+c read from in cancels the task; otherwise progress is printed as
// plain lines.
func Run(ctx context.Context, in io.Reader, out io.Writer, interactive bool, task Task) ([]*models.CommitMessage, error) {
	if !interactive {
		printer := console.New(out)
		return task(ctx, func(ev generate.Event) {
			switch ev.Type {
			case generate.EventAttemptStarted:
				printer.Println(components.AttemptLabel(ev.Attempt, ev.Total))
			case generate.EventAttemptFailed:
				printer.Println(styles.WarningTextStyle.Render(failureLine(ev)))
			}
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, done, result := start(ctx, task)

	p := tea.NewProgram(newModel(events, done, cancel),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, runErr := p.Run()

	cancel()
	<-done

	if m, ok := final.(Model); ok && m.spinner.Cancelling() {
		return nil, context.Canceled
	}
	if errors.Is(runErr, tea.ErrInterrupted) {
		return nil, context.Canceled
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return nil, errors.Wrap(runErr, "progress display failed")
	}
	return result.messages, result.err
}
