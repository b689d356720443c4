package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

func TestGenerationSpinner_Label(t *testing.T) {
	s := NewGenerationSpinner()
	if got := s.Label(); got != "Generating commit message..." {
		t.Errorf("Label() before any attempt = %q", got)
	}

	s.StartAttempt(2, 3)
	if got := s.Label(); got != "Generating suggestion 2/3..." {
		t.Errorf("Label() = %q, want attempt 2/3", got)
	}

	s.FailAttempt()
	if s.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", s.Failed())
	}
	if view := ansi.Strip(s.View()); !strings.Contains(view, "Generating suggestion 2/3... (1 failed)") {
		t.Errorf("View() = %q, want label and failure count", view)
	}

	s.Cancel()
	s.StartAttempt(3, 3)
	if !s.Cancelling() || s.Label() != "Cancelling..." {
		t.Errorf("Label() after Cancel = %q, want Cancelling...", s.Label())
	}
}

func TestGenerationSpinner_Tick(t *testing.T) {
	s := NewGenerationSpinner()

	if strings.Contains(ansi.Strip(s.View()), "failed") {
		t.Error("View should not mention failures before any")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	_, cmd := s.Update(s.spinner.Tick())
	if cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderLineChart(t *testing.T) {
	s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test")
	if !strings.Contains(s, "Test") {
		t.Error("RenderLineChart should include the caption")
	}
	if RenderLineChart(nil, 20, 5, "x") == "" {
		t.Error("empty data should render a placeholder")
	}
}

func TestRenderCostChart(t *testing.T) {
	day := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)
	days := []models.DailyCost{
		{Day: day, Cost: 0.1},
		{Day: day.AddDate(0, 0, 1), Cost: 0},
		{Day: day.AddDate(0, 0, 2), Cost: 0.25},
	}

	s := ansi.Strip(RenderCostChart(days, 30, 5))
	if !strings.Contains(s, "Mar 1 to Mar 3") {
		t.Errorf("caption missing date range: %s", s)
	}
	if !strings.Contains(s, "$0.3500") {
		t.Errorf("caption missing total: %s", s)
	}

	if !strings.Contains(RenderCostChart(nil, 30, 5), "No usage") {
		t.Error("empty series should render a placeholder")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{0.5, 1}, []string{"openai", "gemini"}, 40)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[1], "$1.0000") {
		t.Errorf("unexpected line %q", lines[1])
	}
	if RenderBarChart(nil, nil, 10) != "" {
		t.Error("empty values should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{0, 1, 2}, 10)
	if s != "▁▄█" {
		t.Errorf("RenderSparkline = %q", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty values should render nothing")
	}
}

func TestRenderTable(t *testing.T) {
	s := ansi.Strip(RenderTable([]string{"Provider", "Cost"}, [][]string{{"openai", "$0.1000"}}))
	for _, want := range []string{"Provider", "Cost", "openai", "$0.1000"} {
		if !strings.Contains(s, want) {
			t.Errorf("table missing %q:\n%s", want, s)
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount = %s", got)
	}
	if got := FormatCount(int64(42)); got != "42" {
		t.Errorf("FormatCount = %s", got)
	}
	if got := FormatCost(0.123456); got != "$0.1235" {
		t.Errorf("FormatCost = %s", got)
	}
	if got := FormatPercent(83.333); got != "83.3%" {
		t.Errorf("FormatPercent = %s", got)
	}
}

func TestLimitBar(t *testing.T) {
	if s := LimitBar(models.LimitStatus{}, 40); !strings.Contains(s, "No monthly cost limit") {
		t.Errorf("unexpected bar without limit: %s", s)
	}

	s := ansi.Strip(LimitBar(models.LimitStatus{Limit: 10, Current: 5}, 60))
	if !strings.Contains(s, "50.0%") || !strings.Contains(s, "$5.0000 / $10.0000") {
		t.Errorf("unexpected bar: %s", s)
	}
}

func TestRenderGradientBar(t *testing.T) {
	s := ansi.Strip(RenderGradientBar(50, 10))
	if strings.Count(s, "█") != 5 || strings.Count(s, "░") != 5 {
		t.Errorf("unexpected bar %q", s)
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
	if got := ansi.Strip(RenderGradientBar(150, 4)); got != "████" {
		t.Errorf("overfull bar = %q", got)
	}
}
