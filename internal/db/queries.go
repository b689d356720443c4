package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

// InsertUsage records one provider request.
func (db *DB) InsertUsage(ctx context.Context, rec *models.UsageRecord) error {
	query := `
		INSERT INTO usage (
			timestamp, provider, model, tokens, cost, success,
			input_tokens, output_tokens, duration_ms, session_id, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		timestamp.Format(timeLayout),
		rec.Provider,
		rec.Model,
		rec.Tokens,
		rec.Cost,
		boolToInt(rec.Success),
		rec.InputTokens,
		rec.OutputTokens,
		rec.DurationMs,
		nullString(rec.SessionID),
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		rec.ID = id
	}
	rec.Timestamp = timestamp

	return nil
}

// GetTotalStats returns all-time aggregates.
func (db *DB) GetTotalStats(ctx context.Context) (*models.TotalStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(SUM(tokens), 0),
			COALESCE(SUM(cost), 0)
		FROM usage
	`

	var stats models.TotalStats
	err := db.QueryRowContext(ctx, query).Scan(
		&stats.Requests,
		&stats.Successful,
		&stats.Tokens,
		&stats.Cost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query total stats: %w", err)
	}

	return &stats, nil
}

// GetMonthlyStats returns aggregates from monthStart onward.
func (db *DB) GetMonthlyStats(ctx context.Context, monthStart time.Time) (*models.MonthlyStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(tokens), 0),
			COALESCE(SUM(cost), 0)
		FROM usage
	` + sqlSinceClause

	stats := models.MonthlyStats{Month: monthStart.Format("January 2006")}
	err := db.QueryRowContext(ctx, query, monthStart.Format(timeLayout)).Scan(
		&stats.Requests,
		&stats.Tokens,
		&stats.Cost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}

	return &stats, nil
}

// GetCostSince returns the summed cost of records from since onward.
func (db *DB) GetCostSince(ctx context.Context, since time.Time) (float64, error) {
	query := "SELECT COALESCE(SUM(cost), 0) FROM usage " + sqlSinceClause

	var cost float64
	if err := db.QueryRowContext(ctx, query, since.Format(timeLayout)).Scan(&cost); err != nil {
		return 0, fmt.Errorf("failed to query cost: %w", err)
	}
	return cost, nil
}

// GetProviderStats returns aggregates per provider and model, most
// expensive first.
func (db *DB) GetProviderStats(ctx context.Context) ([]models.ProviderStats, error) {
	query := `
		SELECT
			provider,
			model,
			COUNT(*),
			COALESCE(SUM(tokens), 0),
			COALESCE(SUM(cost), 0) AS total_cost
		FROM usage
		GROUP BY provider, model
		ORDER BY total_cost DESC, provider, model
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []models.ProviderStats
	for rows.Next() {
		var s models.ProviderStats
		if err := rows.Scan(&s.Provider, &s.Model, &s.Requests, &s.Tokens, &s.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan provider stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetRecentUsage returns up to limit records from since onward, newest first.
func (db *DB) GetRecentUsage(ctx context.Context, since time.Time, limit int) ([]models.UsageRecord, error) {
	query := `
		SELECT id, timestamp, provider, model, tokens, cost, success,
			   input_tokens, output_tokens, duration_ms, session_id, error
		FROM usage
	` + sqlSinceClause + `
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, since.Format(timeLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.UsageRecord
	for rows.Next() {
		var rec models.UsageRecord
		var ts string
		var success int
		var sessID, errStr sql.NullString

		err := rows.Scan(
			&rec.ID,
			&ts,
			&rec.Provider,
			&rec.Model,
			&rec.Tokens,
			&rec.Cost,
			&success,
			&rec.InputTokens,
			&rec.OutputTokens,
			&rec.DurationMs,
			&sessID,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}

		rec.Timestamp = parseTimestamp(ts)
		rec.Success = success != 0
		rec.SessionID = sessID.String
		rec.Error = errStr.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetDailyCost returns the cost per calendar day from since onward, oldest
// first. Days without records are omitted.
func (db *DB) GetDailyCost(ctx context.Context, since time.Time) ([]models.DailyCost, error) {
	query := `
		SELECT SUBSTR(timestamp, 1, 10) AS day, COALESCE(SUM(cost), 0)
		FROM usage
	` + sqlSinceClause + `
		GROUP BY day
		ORDER BY day
	`

	rows, err := db.QueryContext(ctx, query, since.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily cost: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []models.DailyCost
	for rows.Next() {
		var day string
		var cost float64
		if err := rows.Scan(&day, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan daily cost: %w", err)
		}
		t, err := time.ParseInLocation(dayLayout, day, time.Local)
		if err != nil {
			logger.Warn("skipping malformed usage day", "day", day, "error", err)
			continue
		}
		days = append(days, models.DailyCost{Day: t, Cost: cost})
	}

	return days, rows.Err()
}

func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		logger.Debug("unparseable usage timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
