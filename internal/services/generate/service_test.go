package generate

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/provider"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	requests []provider.Request
	replies  []error
}

func (f *fakeProvider) Name() string  { return "openai" }
func (f *fakeProvider) Model() string { return "gpt-4" }

func (f *fakeProvider) Info() provider.ModelInfo {
	return provider.ModelInfo{Provider: f.Name(), Model: f.Model()}
}

func (f *fakeProvider) ValidateCredentials(context.Context) error { return nil }

// Generate fails when the reply for this call is a non-nil error.
func (f *fakeProvider) Generate(ctx context.Context, req provider.Request) (*models.CommitMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if f.calls <= len(f.replies) && f.replies[f.calls-1] != nil {
		return nil, f.replies[f.calls-1]
	}
	return &models.CommitMessage{
		Subject:      "feat: add thing",
		Provider:     f.Name(),
		Model:        f.Model(),
		InputTokens:  70,
		OutputTokens: 30,
		TotalTokens:  100,
		Cost:         0.01,
	}, nil
}

type fakeRecorder struct {
	records []*models.UsageRecord
	spent   float64
}

func (f *fakeRecorder) Record(_ context.Context, rec *models.UsageRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecorder) CheckMonthlyLimit(_ context.Context, limit float64) (models.LimitStatus, error) {
	return models.LimitStatus{Limit: limit, Current: f.spent, Exceeded: limit > 0 && f.spent >= limit}, nil
}

func testSummary() *models.DiffSummary {
	return &models.DiffSummary{
		Files:       []string{"main.go"},
		ChangeTypes: map[string]models.ChangeType{"main.go": models.ChangeModified},
		Additions:   3,
		Deletions:   1,
		Text:        "diff --git a/main.go b/main.go\n+fmt.Println()\n",
	}
}

func TestRun_GeneratesCount(t *testing.T) {
	p := &fakeProvider{}
	rec := &fakeRecorder{}
	svc := New(p, rec, 0, PromptOptions{Format: "conventional"})

	var events []Event
	msgs, err := svc.Run(context.Background(), testSummary(), Options{
		Count:    3,
		Progress: func(e Event) { events = append(events, e) },
	})
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, 3, p.calls)

	require.Len(t, rec.records, 3)
	sessionID := rec.records[0].SessionID
	assert.NotEmpty(t, sessionID)
	for _, r := range rec.records {
		assert.True(t, r.Success)
		assert.Equal(t, sessionID, r.SessionID)
		assert.Equal(t, 100, r.Tokens)
		assert.InDelta(t, 0.01, r.Cost, 1e-9)
	}

	require.Len(t, events, 6)
	assert.Equal(t, EventAttemptStarted, events[0].Type)
	assert.Equal(t, EventAttemptSucceeded, events[5].Type)
	assert.Equal(t, 3, events[5].Attempt)
	assert.Equal(t, 3, events[5].Total)

	assert.Contains(t, p.requests[0].UserPrompt, "main.go")
	assert.NotEmpty(t, p.requests[0].SystemPrompt)
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	p := &fakeProvider{replies: []error{errors.Mark(errors.New("503"), models.ErrProvider)}}
	rec := &fakeRecorder{}
	svc := New(p, rec, 0, PromptOptions{})

	msgs, err := svc.Run(context.Background(), testSummary(), Options{Count: 2})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	require.Len(t, rec.records, 2)
	assert.False(t, rec.records[0].Success)
	assert.Equal(t, "503", rec.records[0].Error)
	assert.Zero(t, rec.records[0].Tokens)
	assert.True(t, rec.records[1].Success)
}

func TestRun_AllFail(t *testing.T) {
	bad := errors.Mark(errors.New("invalid key"), models.ErrInvalidAPIKey)
	p := &fakeProvider{replies: []error{bad, bad}}
	svc := New(p, &fakeRecorder{}, 0, PromptOptions{})

	_, err := svc.Run(context.Background(), testSummary(), Options{Count: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidAPIKey))
}

func TestRun_CostLimit(t *testing.T) {
	p := &fakeProvider{}
	rec := &fakeRecorder{spent: 5}
	svc := New(p, rec, 5, PromptOptions{})

	_, err := svc.Run(context.Background(), testSummary(), Options{Count: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCostLimitExceeded))
	assert.Zero(t, p.calls, "no request once the limit is reached")
	assert.Contains(t, errors.FlattenHints(err), "$5.0000")
}

func TestRun_NoTracking(t *testing.T) {
	p := &fakeProvider{}
	svc := New(p, nil, 1, PromptOptions{})

	msgs, err := svc.Run(context.Background(), testSummary(), Options{Count: 1})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestRun_InvalidInput(t *testing.T) {
	svc := New(&fakeProvider{}, nil, 0, PromptOptions{})

	_, err := svc.Run(context.Background(), &models.DiffSummary{}, Options{Count: 1})
	assert.True(t, errors.Is(err, models.ErrNoStagedChanges))

	for _, count := range []int{0, 6} {
		_, err = svc.Run(context.Background(), testSummary(), Options{Count: count})
		assert.True(t, errors.Is(err, models.ErrConfiguration), "count %d", count)
	}
}

func TestRun_CustomTemplate(t *testing.T) {
	p := &fakeProvider{}
	svc := New(p, nil, 0, PromptOptions{Format: "custom", Template: "jira", TicketID: "PROJ-7"})

	_, err := svc.Run(context.Background(), testSummary(), Options{Count: 1})
	require.NoError(t, err)
	assert.Contains(t, p.requests[0].UserPrompt, "[PROJ-7]")

	svc = New(p, nil, 0, PromptOptions{Format: "custom", Template: "jira"})
	_, err = svc.Run(context.Background(), testSummary(), Options{Count: 1})
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestRun_Cancelled(t *testing.T) {
	p := &fakeProvider{}
	rec := &fakeRecorder{}
	svc := New(p, rec, 0, PromptOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, testSummary(), Options{Count: 3})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)
	assert.Len(t, rec.records, 1)
}
