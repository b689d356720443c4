// Package review lets the user pick, edit and accept a suggested commit
// message.
package review

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/ui/console"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

// Action is the outcome chosen by the user.
type Action int

const (
	Cancelled Action = iota
	Accepted
	Regenerate
)

func (a Action) String() string {
	switch a {
	case Accepted:
		return "accepted"
	case Regenerate:
		return "regenerate"
	default:
		return "cancelled"
	}
}

// Result is what the review ended with. Message is set for Accepted.
type Result struct {
	Action  Action
	Message string
}

type state int

const (
	stateSelect state = iota
	stateReview
	stateEdit
	stateConfirm
)

const defaultWidth = 80

// Model is the bubbletea model of the review flow.
type Model struct {
	state       state
	suggestions []*models.CommitMessage
	cursor      int
	chosen      *models.CommitMessage
	editor      textarea.Model
	edited      string
	notice      string
	width       int
	keys        KeyMap
	help        help.Model
	result      Result
}

// New creates a review over suggestions. With a single suggestion the
// selection step is skipped.
func New(suggestions []*models.CommitMessage) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth - 4)
	ta.SetHeight(10)

	m := Model{
		state:       stateSelect,
		suggestions: suggestions,
		editor:      ta,
		width:       defaultWidth,
		keys:        DefaultKeyMap(),
		help:        newHelp(),
	}
	if len(suggestions) == 1 {
		m.state = stateReview
		m.chosen = suggestions[0]
	}
	return m
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	return h
}

// Result returns the outcome once the program has finished.
func (m Model) Result() Result {
	return m.result
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.editor.SetWidth(max(20, msg.Width-4))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.finish(Result{Action: Cancelled})
		}
		switch m.state {
		case stateSelect:
			return m.updateSelect(msg)
		case stateReview:
			return m.updateReview(msg)
		case stateEdit:
			return m.updateEdit(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) finish(r Result) (tea.Model, tea.Cmd) {
	m.result = r
	return m, tea.Quit
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.chosen = m.suggestions[m.cursor]
		m.state = stateReview
	case key.Matches(msg, m.keys.Abort):
		return m.finish(Result{Action: Cancelled})
	}
	return m, nil
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		return m.finish(Result{Action: Accepted, Message: m.chosen.Format()})
	case key.Matches(msg, m.keys.Edit):
		m.state = stateEdit
		m.notice = ""
		m.editor.SetValue(m.chosen.Format())
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.Regenerate):
		return m.finish(Result{Action: Regenerate})
	case key.Matches(msg, m.keys.Cancel):
		return m.finish(Result{Action: Cancelled})
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		text := strings.TrimSpace(m.editor.Value())
		if text == "" {
			m.notice = "The commit message cannot be empty"
			return m, nil
		}
		m.edited = text
		m.editor.Blur()
		m.state = stateConfirm
		return m, nil
	case key.Matches(msg, m.keys.Abort):
		m.editor.Blur()
		m.state = stateReview
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		return m.finish(Result{Action: Accepted, Message: m.edited})
	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Abort):
		m.state = stateEdit
		return m, m.editor.Focus()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	switch m.state {
	case stateSelect:
		b.WriteString(styles.SubTitleStyle.Render(fmt.Sprintf("%d suggestions, pick one:", len(m.suggestions))))
		b.WriteString("\n\n")
		for i, s := range m.suggestions {
			line := ansi.Truncate(fmt.Sprintf("%d. %s", i+1, s.Subject), max(10, m.width-4), "...")
			if i == m.cursor {
				b.WriteString(styles.SelectedListItemStyle.Render(line))
			} else {
				b.WriteString(styles.ListItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + m.help.View(selectHelp(m.keys)))

	case stateReview:
		b.WriteString(console.MessagePanel("Suggested commit message", m.chosen))
		b.WriteString("\n" + m.help.View(reviewHelp(m.keys)))

	case stateEdit:
		b.WriteString(styles.SubTitleStyle.Render("Edit commit message"))
		b.WriteString("\n")
		b.WriteString(styles.FocusedBorderStyle.Render(m.editor.View()))
		if m.notice != "" {
			b.WriteString("\n" + styles.ErrorTextStyle.Render(m.notice))
		}
		b.WriteString("\n" + m.help.View(editHelp(m.keys)))

	case stateConfirm:
		b.WriteString(styles.MessagePanelStyle.Render(m.edited))
		b.WriteString("\n" + styles.InfoTextStyle.Render("Use this message? (Y/n)"))
	}

	return b.String() + "\n"
}

// Run shows the review flow on in/out and returns the outcome. An
// interrupted context yields Cancelled together with the context error.
func Run(ctx context.Context, suggestions []*models.CommitMessage, in io.Reader, out io.Writer) (Result, error) {
	if len(suggestions) == 0 {
		return Result{}, errors.New("no suggestions to review")
	}

	p := tea.NewProgram(New(suggestions),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return Result{Action: Cancelled}, ctx.Err()
		}
		return Result{Action: Cancelled}, errors.Wrap(err, "review failed")
	}
	return final.(Model).Result(), nil
}
