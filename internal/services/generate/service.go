// Package generate runs the commit message pipeline: limit check, prompt,
// provider call, parse and usage record, once per requested suggestion.
package generate

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/prompt"
	"github.com/maadhav-codes/diff2commit/internal/provider"
)

// MaxCount is the largest number of suggestions one run may request.
const MaxCount = 5

// Recorder persists usage and reports the monthly spend.
type Recorder interface {
	Record(ctx context.Context, rec *models.UsageRecord) error
	CheckMonthlyLimit(ctx context.Context, limit float64) (models.LimitStatus, error)
}

// EventType identifies a progress event.
type EventType int

// Progress event types.
const (
	EventAttemptStarted EventType = iota
	EventAttemptSucceeded
	EventAttemptFailed
)

// Event reports the progress of a run.
type Event struct {
	Type    EventType
	Attempt int
	Total   int
	Message *models.CommitMessage
	Err     error
}

// Options controls one run.
type Options struct {
	Count int
	// Progress, when set, receives an event before and after every attempt.
	Progress func(Event)
}

// PromptOptions selects how the user prompt is built.
type PromptOptions struct {
	// Format is "conventional" or "custom".
	Format       string
	Template     string
	TicketID     string
	IncludeEmoji bool
}

type Service struct {
	provider provider.Provider
	usage    Recorder
	limit    float64
	prompts  PromptOptions
}

// New creates a pipeline. usage may be nil when tracking is disabled, in
// which case the cost limit is not enforced either.
func New(p provider.Provider, usage Recorder, limit float64, prompts PromptOptions) *Service {
	return &Service{
		provider: p,
		usage:    usage,
		limit:    limit,
		prompts:  prompts,
	}
}

// Run generates opts.Count suggestions for summary. Failed attempts are
// logged and recorded; the run fails only when no attempt succeeds.
func (s *Service) Run(ctx context.Context, summary *models.DiffSummary, opts Options) ([]*models.CommitMessage, error) {
	if summary.IsEmpty() {
		return nil, errors.WithHint(models.ErrNoStagedChanges, "stage files with 'git add <file>' first")
	}
	if opts.Count < 1 || opts.Count > MaxCount {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("count must be between 1 and %d (got %d)", MaxCount, opts.Count), models.ErrConfiguration),
			"pass --count with a value from 1 to %d", MaxCount)
	}

	if err := s.enforceLimit(ctx); err != nil {
		return nil, err
	}

	req, err := s.request(summary)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	emit := func(e Event) {
		if opts.Progress != nil {
			e.Total = opts.Count
			opts.Progress(e)
		}
	}

	var (
		messages []*models.CommitMessage
		lastErr  error
	)
	for i := 1; i <= opts.Count; i++ {
		emit(Event{Type: EventAttemptStarted, Attempt: i})

		start := time.Now()
		msg, err := s.provider.Generate(ctx, req)
		s.record(ctx, sessionID, start, msg, err)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("suggestion failed", "attempt", i, "of", opts.Count, "error", err)
			lastErr = err
			emit(Event{Type: EventAttemptFailed, Attempt: i, Err: err})
			continue
		}

		messages = append(messages, msg)
		emit(Event{Type: EventAttemptSucceeded, Attempt: i, Message: msg})
	}

	if len(messages) == 0 {
		if lastErr == nil {
			lastErr = models.ErrEmptyResponse
		}
		return nil, errors.Wrap(lastErr, "failed to generate any commit message")
	}
	return messages, nil
}

func (s *Service) enforceLimit(ctx context.Context) error {
	if s.usage == nil || s.limit <= 0 {
		return nil
	}
	status, err := s.usage.CheckMonthlyLimit(ctx, s.limit)
	if err != nil {
		logger.Warn("failed to read monthly spend, skipping limit check", "error", err)
		return nil
	}
	if !status.Exceeded {
		return nil
	}
	return errors.WithHintf(
		errors.Wrapf(models.ErrCostLimitExceeded, "spent $%.4f of $%.2f", status.Current, status.Limit),
		"raise cost_limit_monthly or set it to 0 to disable the limit (current: $%.4f, limit: $%.2f)",
		status.Current, status.Limit)
}

func (s *Service) request(summary *models.DiffSummary) (provider.Request, error) {
	req := provider.Request{Summary: summary, SystemPrompt: prompt.System}
	if s.prompts.Format == config.FormatCustom {
		text, err := prompt.BuildCustomPrompt(s.prompts.Template, summary, s.prompts.TicketID)
		if err != nil {
			return req, err
		}
		req.UserPrompt = text
		return req, nil
	}
	req.UserPrompt = prompt.BuildCommitPrompt(summary, s.prompts.IncludeEmoji)
	return req, nil
}

func (s *Service) record(ctx context.Context, sessionID string, start time.Time, msg *models.CommitMessage, genErr error) {
	if s.usage == nil {
		return
	}

	rec := &models.UsageRecord{
		Provider:   s.provider.Name(),
		Model:      s.provider.Model(),
		Success:    genErr == nil,
		DurationMs: time.Since(start).Milliseconds(),
		SessionID:  sessionID,
	}
	if genErr != nil {
		rec.Error = genErr.Error()
	} else {
		rec.Tokens = msg.TotalTokens
		rec.InputTokens = msg.InputTokens
		rec.OutputTokens = msg.OutputTokens
		rec.Cost = msg.Cost
	}

	// A cancelled run still gets its row written.
	if err := s.usage.Record(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("failed to record usage", "error", err)
	}
}
