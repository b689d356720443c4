// Package watch implements the live usage dashboard.
package watch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/services"
	"github.com/maadhav-codes/diff2commit/internal/ui/components"
	"github.com/maadhav-codes/diff2commit/internal/ui/console"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

// Source provides usage snapshots and change notifications.
type Source interface {
	Snapshot(ctx context.Context) (*services.Snapshot, error)
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
}

type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type snapshotMsg struct {
	snapshot *services.Snapshot
	err      error
}

// Model is the dashboard bubbletea model.
type Model struct {
	source   Source
	events   chan services.ServiceEvent
	wait     tea.Cmd
	snapshot *services.Snapshot
	err      error
	updated  time.Time
	width    int
	height   int
	keys     keyMap
	help     help.Model
	now      func() time.Time
}

// New creates a dashboard subscribed to source.
func New(source Source) Model {
	events, wait := source.Subscribe()
	return Model{
		source: source,
		events: events,
		wait:   wait,
		width:  80,
		keys:   defaultKeyMap(),
		help:   newHelp(),
		now:    time.Now,
	}
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	return h
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.source.Snapshot(context.Background())
		return snapshotMsg{snapshot: snap, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.wait)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		}
		return m, nil

	case snapshotMsg:
		m.setSnapshot(msg.snapshot, msg.err)
		return m, nil

	case services.UsageUpdatedEvent:
		m.setSnapshot(msg.Snapshot, nil)
		return m, services.WaitForEvent(m.events)

	case services.ErrorEvent:
		logger.Warn("Dashboard event error", "service", msg.Service, "error", msg.Error)
		m.err = msg.Error
		return m, services.WaitForEvent(m.events)
	}
	return m, nil
}

func (m *Model) setSnapshot(snap *services.Snapshot, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.snapshot = snap
	m.err = nil
	m.updated = m.now()
}

func (m Model) View() string {
	contentWidth := max(40, m.width-4)

	var sections []string
	sections = append(sections, styles.CenterHorizontal(styles.TitleStyle.Render("diff2commit usage"), contentWidth))

	if m.snapshot == nil {
		if m.err != nil {
			sections = append(sections, styles.ErrorTextStyle.Render("✗ Error: "+m.err.Error()))
		} else {
			sections = append(sections, styles.MutedTextStyle.Render("Loading usage..."))
		}
		sections = append(sections, m.help.View(m.keys))
		return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	}

	snap := m.snapshot
	cardWidth := max(30, contentWidth/2-2)

	totals := card("All time", console.UsageTotals(snap.Total), cardWidth)
	monthly := card("This month", console.UsageMonthly(snap.Monthly, snap.Limit)+"\n\n"+
		components.LimitBar(snap.Limit, cardWidth-4), cardWidth)
	if contentWidth >= 2*cardWidth+2 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, totals, "  ", monthly))
	} else {
		sections = append(sections, totals, monthly)
	}

	sections = append(sections, card("By provider", console.UsageByProvider(snap.ByProvider), contentWidth))

	if len(snap.Daily) > 0 {
		values := make([]float64, len(snap.Daily))
		var sum float64
		for i, d := range snap.Daily {
			values[i] = d.Cost
			sum += d.Cost
		}
		trend := components.RenderSparkline(values, min(len(values), contentWidth-6)) +
			"\n" + styles.MutedTextStyle.Render(fmt.Sprintf("%d days, %s total", len(values), components.FormatCost(sum)))
		sections = append(sections, card("Daily cost", trend, contentWidth))
	}

	status := styles.MutedTextStyle.Render("Updated " + m.updated.Format("15:04:05"))
	if m.err != nil {
		status += "  " + styles.ErrorTextStyle.Render("✗ "+m.err.Error())
	}
	sections = append(sections, status, m.help.View(m.keys))

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func card(title, body string, width int) string {
	content := strings.Join([]string{styles.CardTitleStyle.Render(title), body}, "\n")
	return styles.CardStyle.Width(width).Render(content)
}

// Run shows the dashboard full screen until the user quits or ctx ends.
func Run(ctx context.Context, source Source, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(source),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return context.Canceled
		}
		return errors.Wrap(err, "dashboard failed")
	}
	return nil
}
