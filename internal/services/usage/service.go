// Package usage records provider requests and reports spend against the
// monthly cost limit.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/maadhav-codes/diff2commit/internal/db"
	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

const (
	// RecentLimit caps the records returned by Recent.
	RecentLimit = 50
	// warnPercent is the share of the monthly limit that triggers a warning.
	warnPercent = 80.0
)

// Notifier delivers a desktop notification.
type Notifier func(title, message string) error

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

type Service struct {
	mu sync.Mutex
	db *db.DB

	limit  float64
	notify Notifier
	now    func() time.Time

	warned   bool
	exceeded bool
}

// New creates a usage service. A limit of 0 disables limit checks.
func New(database *db.DB, limit float64) *Service {
	return &Service{
		db:     database,
		limit:  limit,
		notify: desktopNotify,
		now:    time.Now,
	}
}

// SetNotifier replaces the desktop notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = n
}

// Record persists one request. Failed requests are stored with zero tokens
// and cost.
func (s *Service) Record(ctx context.Context, rec *models.UsageRecord) error {
	if !rec.Success {
		rec.Tokens, rec.InputTokens, rec.OutputTokens, rec.Cost = 0, 0, 0, 0
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	if err := s.db.InsertUsage(ctx, rec); err != nil {
		return err
	}

	if rec.Success && rec.Cost > 0 && s.limit > 0 {
		s.checkThresholds(ctx)
	}
	return nil
}

// checkThresholds notifies once per process when the month crosses 80% of
// the limit and once when it reaches the limit.
func (s *Service) checkThresholds(ctx context.Context) {
	status, err := s.CheckMonthlyLimit(ctx, s.limit)
	if err != nil {
		logger.Warn("failed to check cost limit", "error", err)
		return
	}

	s.mu.Lock()
	var title, body string
	switch {
	case status.Exceeded && !s.exceeded:
		s.exceeded, s.warned = true, true
		title = "diff2commit: monthly cost limit reached"
		body = fmt.Sprintf("Spent $%.4f of $%.2f this month. Further requests are blocked.", status.Current, status.Limit)
	case !status.Exceeded && status.Percent() >= warnPercent && !s.warned:
		s.warned = true
		title = "diff2commit: approaching monthly cost limit"
		body = fmt.Sprintf("Spent $%.4f of $%.2f this month (%.0f%%).", status.Current, status.Limit, status.Percent())
	}
	notify := s.notify
	s.mu.Unlock()

	if title == "" || notify == nil {
		return
	}
	if err := notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// Total returns all-time aggregates.
func (s *Service) Total(ctx context.Context) (*models.TotalStats, error) {
	return s.db.GetTotalStats(ctx)
}

// Monthly returns aggregates for the current calendar month.
func (s *Service) Monthly(ctx context.Context) (*models.MonthlyStats, error) {
	return s.db.GetMonthlyStats(ctx, monthStart(s.now()))
}

// ByProvider returns aggregates per provider and model, most expensive first.
func (s *Service) ByProvider(ctx context.Context) ([]models.ProviderStats, error) {
	return s.db.GetProviderStats(ctx)
}

// Recent returns up to RecentLimit records from the last days, newest first.
func (s *Service) Recent(ctx context.Context, days int) ([]models.UsageRecord, error) {
	if days < 1 {
		days = 1
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.db.GetRecentUsage(ctx, since, RecentLimit)
}

// DailyCost returns one point per day for the last days, oldest first,
// including days without spend.
func (s *Service) DailyCost(ctx context.Context, days int) ([]models.DailyCost, error) {
	if days < 1 {
		days = 1
	}
	today := dayStart(s.now())
	first := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.GetDailyCost(ctx, first)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]float64, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format(time.DateOnly)] = r.Cost
	}

	series := make([]models.DailyCost, 0, days)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		series = append(series, models.DailyCost{Day: d, Cost: byDay[d.Format(time.DateOnly)]})
	}
	return series, nil
}

// CheckMonthlyLimit compares the spend of the current month with limit. The
// limit is reached when the spend is greater than or equal to it; a limit
// of 0 never is.
func (s *Service) CheckMonthlyLimit(ctx context.Context, limit float64) (models.LimitStatus, error) {
	status := models.LimitStatus{Limit: limit}
	if limit <= 0 {
		return status, nil
	}

	current, err := s.db.GetCostSince(ctx, monthStart(s.now()))
	if err != nil {
		return status, err
	}
	status.Current = current
	status.Exceeded = current >= limit
	return status, nil
}

// Limit returns the configured monthly limit.
func (s *Service) Limit() float64 {
	return s.limit
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
