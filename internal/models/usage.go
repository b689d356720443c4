package models

import "time"

// UsageRecord is one provider request as persisted in the usage database.
type UsageRecord struct {
	ID           int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Tokens       int
	InputTokens  int
	OutputTokens int
	Cost         float64
	Success      bool
	DurationMs   int64
	SessionID    string
	Error        string
}

// TotalStats represents all-time aggregated usage.
type TotalStats struct {
	Requests   int
	Successful int
	Tokens     int64
	Cost       float64
}

// SuccessRate returns the share of successful requests in percent.
func (s *TotalStats) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Requests) * 100
}

// MonthlyStats represents usage in the current calendar month.
type MonthlyStats struct {
	Month    string
	Requests int
	Tokens   int64
	Cost     float64
}

// ProviderStats represents usage grouped by provider and model.
type ProviderStats struct {
	Provider string
	Model    string
	Requests int
	Tokens   int64
	Cost     float64
}

// DailyCost is the summed cost of one calendar day.
type DailyCost struct {
	Day  time.Time
	Cost float64
}

// LimitStatus describes the monthly spend against the configured limit.
type LimitStatus struct {
	Limit    float64
	Current  float64
	Exceeded bool
}

// Percent returns the spend as a percentage of the limit.
func (l LimitStatus) Percent() float64 {
	if l.Limit <= 0 {
		return 0
	}
	return l.Current / l.Limit * 100
}
