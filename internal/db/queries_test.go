package db

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

func insert(t *testing.T, db *DB, rec models.UsageRecord) models.UsageRecord {
	t.Helper()
	if err := db.InsertUsage(context.Background(), &rec); err != nil {
		t.Fatalf("InsertUsage() error = %v", err)
	}
	return rec
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestInsertUsage(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	rec := insert(t, db, models.UsageRecord{
		Provider:     "openai",
		Model:        "gpt-4",
		Tokens:       150,
		InputTokens:  100,
		OutputTokens: 50,
		Cost:         0.006,
		Success:      true,
		DurationMs:   1200,
		SessionID:    "session-1",
	})

	if rec.ID == 0 {
		t.Error("InsertUsage() should set ID")
	}
	if rec.Timestamp.IsZero() {
		t.Error("InsertUsage() should default the timestamp")
	}

	recent, err := db.GetRecentUsage(context.Background(), time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetRecentUsage() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recent))
	}
	got := recent[0]
	if got.Provider != "openai" || got.Model != "gpt-4" || got.Tokens != 150 || !got.Success {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.InputTokens != 100 || got.OutputTokens != 50 || got.DurationMs != 1200 || got.SessionID != "session-1" {
		t.Errorf("unexpected detail columns: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
}

func TestGetTotalStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	stats, err := db.GetTotalStats(context.Background())
	if err != nil {
		t.Fatalf("GetTotalStats() on empty db error = %v", err)
	}
	if stats.Requests != 0 || stats.Cost != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	insert(t, db, models.UsageRecord{Provider: "openai", Model: "gpt-4", Tokens: 100, Cost: 0.01, Success: true})
	insert(t, db, models.UsageRecord{Provider: "gemini", Model: "gemini-pro", Tokens: 200, Cost: 0.02, Success: true})
	insert(t, db, models.UsageRecord{Provider: "openai", Model: "gpt-4", Success: false, Error: "timeout"})

	stats, err = db.GetTotalStats(context.Background())
	if err != nil {
		t.Fatalf("GetTotalStats() error = %v", err)
	}
	if stats.Requests != 3 || stats.Successful != 2 || stats.Tokens != 300 || !approx(stats.Cost, 0.03) {
		t.Errorf("GetTotalStats() = %+v", stats)
	}
}

func TestGetMonthlyStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	insert(t, db, models.UsageRecord{Timestamp: monthStart.Add(-time.Second), Provider: "openai", Model: "gpt-4", Tokens: 999, Cost: 9, Success: true})
	insert(t, db, models.UsageRecord{Timestamp: monthStart, Provider: "openai", Model: "gpt-4", Tokens: 10, Cost: 0.5, Success: true})
	insert(t, db, models.UsageRecord{Timestamp: monthStart.Add(time.Hour), Provider: "openai", Model: "gpt-4", Tokens: 20, Cost: 0.25, Success: true})

	stats, err := db.GetMonthlyStats(context.Background(), monthStart)
	if err != nil {
		t.Fatalf("GetMonthlyStats() error = %v", err)
	}
	if stats.Requests != 2 || stats.Tokens != 30 || !approx(stats.Cost, 0.75) {
		t.Errorf("GetMonthlyStats() = %+v", stats)
	}
	if want := monthStart.Format("January 2006"); stats.Month != want {
		t.Errorf("Month = %q, want %q", stats.Month, want)
	}

	cost, err := db.GetCostSince(context.Background(), monthStart)
	if err != nil {
		t.Fatalf("GetCostSince() error = %v", err)
	}
	if !approx(cost, 0.75) {
		t.Errorf("GetCostSince() = %v, want 0.75", cost)
	}
}

func TestGetProviderStats_OrderedByCost(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	insert(t, db, models.UsageRecord{Provider: "gemini", Model: "gemini-pro", Tokens: 100, Cost: 0.001, Success: true})
	insert(t, db, models.UsageRecord{Provider: "openai", Model: "gpt-4", Tokens: 100, Cost: 0.05, Success: true})
	insert(t, db, models.UsageRecord{Provider: "openai", Model: "gpt-4", Tokens: 50, Cost: 0.02, Success: true})
	insert(t, db, models.UsageRecord{Provider: "openai", Model: "gpt-3.5-turbo", Tokens: 80, Cost: 0.01, Success: true})

	stats, err := db.GetProviderStats(context.Background())
	if err != nil {
		t.Fatalf("GetProviderStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(stats))
	}

	wantOrder := []string{"gpt-4", "gpt-3.5-turbo", "gemini-pro"}
	for i, model := range wantOrder {
		if stats[i].Model != model {
			t.Errorf("stats[%d].Model = %s, want %s", i, stats[i].Model, model)
		}
	}
	if stats[0].Requests != 2 || stats[0].Tokens != 150 || !approx(stats[0].Cost, 0.07) {
		t.Errorf("gpt-4 group = %+v", stats[0])
	}
}

func TestGetRecentUsage_WindowAndLimit(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now().Truncate(time.Second)
	insert(t, db, models.UsageRecord{Timestamp: now.AddDate(0, 0, -10), Provider: "old", Model: "m", Success: true})
	for i := 0; i < 5; i++ {
		insert(t, db, models.UsageRecord{Timestamp: now.Add(-time.Duration(i) * time.Minute), Provider: "new", Model: "m", Success: true})
	}

	recent, err := db.GetRecentUsage(context.Background(), now.AddDate(0, 0, -7), 3)
	if err != nil {
		t.Fatalf("GetRecentUsage() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Timestamp.After(recent[i-1].Timestamp) {
			t.Errorf("records not newest first: %v after %v", recent[i].Timestamp, recent[i-1].Timestamp)
		}
	}
	for _, r := range recent {
		if r.Provider == "old" {
			t.Error("record outside the window returned")
		}
	}
}

func TestGetDailyCost(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 3, 18, 30, 0, 0, time.Local)
	insert(t, db, models.UsageRecord{Timestamp: day1, Provider: "p", Model: "m", Cost: 0.1, Success: true})
	insert(t, db, models.UsageRecord{Timestamp: day1.Add(time.Hour), Provider: "p", Model: "m", Cost: 0.2, Success: true})
	insert(t, db, models.UsageRecord{Timestamp: day2, Provider: "p", Model: "m", Cost: 0.5, Success: true})

	days, err := db.GetDailyCost(context.Background(), day1.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("GetDailyCost() error = %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Day.Day() != 1 || !approx(days[0].Cost, 0.3) {
		t.Errorf("days[0] = %+v", days[0])
	}
	if days[1].Day.Day() != 3 || !approx(days[1].Cost, 0.5) {
		t.Errorf("days[1] = %+v", days[1])
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("empty string should be NULL")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("nullString(x) = %+v", ns)
	}
}
