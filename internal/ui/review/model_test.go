package review

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func suggestions(subjects ...string) []*models.CommitMessage {
	out := make([]*models.CommitMessage, len(subjects))
	for i, s := range subjects {
		out[i] = &models.CommitMessage{Subject: s, Body: "- detail"}
	}
	return out
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNew_SingleSuggestionSkipsSelection(t *testing.T) {
	m := New(suggestions("feat: one"))
	if m.state != stateReview {
		t.Errorf("state = %v, want review", m.state)
	}
	if m.chosen == nil || m.chosen.Subject != "feat: one" {
		t.Error("single suggestion should be chosen")
	}

	m = New(suggestions("feat: one", "fix: two"))
	if m.state != stateSelect {
		t.Errorf("state = %v, want select", m.state)
	}
}

func TestSelectThenAccept(t *testing.T) {
	m := New(suggestions("feat: one", "fix: two", "docs: three"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateReview {
		t.Fatalf("state = %v, want review", m.state)
	}

	m, cmd := update(t, m, runes("a"))
	if !isQuit(cmd) {
		t.Fatal("accept should quit")
	}
	got := m.Result()
	if got.Action != Accepted {
		t.Errorf("Action = %v, want accepted", got.Action)
	}
	if got.Message != "fix: two\n\n- detail" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestReviewActions(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"regenerate", runes("r"), Regenerate},
		{"cancel", runes("c"), Cancelled},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, Cancelled},
		{"interrupt", tea.KeyMsg{Type: tea.KeyCtrlC}, Cancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(suggestions("feat: one"))
			m, cmd := update(t, m, tt.msg)
			if !isQuit(cmd) {
				t.Fatal("expected quit")
			}
			if m.Result().Action != tt.want {
				t.Errorf("Action = %v, want %v", m.Result().Action, tt.want)
			}
		})
	}
}

func TestEditSaveConfirm(t *testing.T) {
	m := New(suggestions("feat: one"))

	m, _ = update(t, m, runes("e"))
	if m.state != stateEdit {
		t.Fatalf("state = %v, want edit", m.state)
	}
	if m.editor.Value() != "feat: one\n\n- detail" {
		t.Errorf("editor prefilled with %q", m.editor.Value())
	}

	m.editor.SetValue("fix: corrected subject")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.state != stateConfirm {
		t.Fatalf("state = %v, want confirm", m.state)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Use this message? (Y/n)") {
		t.Error("confirm prompt missing")
	}

	m, _ = update(t, m, runes("n"))
	if m.state != stateEdit {
		t.Fatalf("state = %v, want edit after declining", m.state)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd := update(t, m, runes("Y"))
	if !isQuit(cmd) {
		t.Fatal("confirm should quit")
	}
	if got := m.Result(); got.Action != Accepted || got.Message != "fix: corrected subject" {
		t.Errorf("Result = %+v", got)
	}
}

func TestEditEmptyAndAbort(t *testing.T) {
	m := New(suggestions("feat: one"))
	m, _ = update(t, m, runes("e"))

	m.editor.SetValue("   ")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.state != stateEdit {
		t.Errorf("empty message should stay in edit, got %v", m.state)
	}
	if !strings.Contains(ansi.Strip(m.View()), "cannot be empty") {
		t.Error("empty notice missing")
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if isQuit(cmd) {
		t.Fatal("escape in editor should not quit")
	}
	if m.state != stateReview {
		t.Errorf("state = %v, want review", m.state)
	}
}

func TestView_TruncatesSubjects(t *testing.T) {
	long := "feat: " + strings.Repeat("x", 200)
	m := New(suggestions(long, "fix: short"))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "1. feat: ") || !strings.Contains(view, "...") {
		t.Errorf("view should show a truncated first subject:\n%s", view)
	}
	if !strings.Contains(view, "2. fix: short") {
		t.Errorf("view missing second subject:\n%s", view)
	}
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, "feat:") && ansi.StringWidth(line) > 40 {
			t.Errorf("line wider than terminal: %q", line)
		}
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	got, err := Run(ctx, suggestions("feat: one"), strings.NewReader("a"), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Action != Accepted || got.Message != "feat: one\n\n- detail" {
		t.Errorf("Result = %+v", got)
	}

	if _, err := Run(ctx, nil, strings.NewReader(""), &out); err == nil {
		t.Error("expected error without suggestions")
	}
}
