// Package services wires configuration, storage and providers together and
// routes usage events to subscribers.
package services

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/db"
	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/provider"
	"github.com/maadhav-codes/diff2commit/internal/services/generate"
	"github.com/maadhav-codes/diff2commit/internal/services/usage"
	"github.com/maadhav-codes/diff2commit/internal/services/watcher"
)

type (
	// UsageUpdatedEvent is emitted when the usage database changed on disk.
	UsageUpdatedEvent struct {
		Snapshot *Snapshot
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (UsageUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()        {}

// Snapshot is every usage aggregate shown by the dashboard.
type Snapshot struct {
	Total      *models.TotalStats
	Monthly    *models.MonthlyStats
	ByProvider []models.ProviderStats
	Limit      models.LimitStatus
	Daily      []models.DailyCost
}

// SnapshotDays is the window of the daily cost series in a snapshot.
const SnapshotDays = 30

// ProviderFactory builds a provider from its configuration.
type ProviderFactory func(provider.Config) (provider.Provider, error)

// Manager owns the per-invocation resources.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	usage       *usage.Service
	watcher     *watcher.Service
	newProvider ProviderFactory
	provider    provider.Provider
	stopChan    chan struct{}
	stopOnce    sync.Once
	subscribers []chan ServiceEvent
}

// NewManager opens the usage database named by cfg.
func NewManager(cfg *config.Config) (*Manager, error) {
	database, err := db.New(cfg.UsageDBPath)
	if err != nil {
		return nil, errors.WithHintf(
			errors.Wrap(err, "failed to initialize usage database"),
			"check that %s is writable or set D2C_USAGE_DB", cfg.UsageDBPath)
	}

	return &Manager{
		cfg:         cfg,
		database:    database,
		usage:       usage.New(database, cfg.CostLimitMonthly),
		newProvider: provider.New,
		stopChan:    make(chan struct{}),
	}, nil
}

// SetProviderFactory replaces the function used to build providers.
func (m *Manager) SetProviderFactory(f ProviderFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newProvider = f
	m.provider = nil
}

// Config returns the effective configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// ProviderConfig maps the configuration onto provider settings.
func (m *Manager) ProviderConfig() provider.Config {
	return provider.Config{
		Name:             m.cfg.AIProvider,
		Model:            m.cfg.AIModel,
		APIKey:           m.cfg.APIKey,
		Endpoint:         m.cfg.APIEndpoint,
		MaxTokens:        m.cfg.MaxTokens,
		Temperature:      m.cfg.Temperature,
		Timeout:          m.cfg.RequestTimeout(),
		MaxRetries:       m.cfg.MaxRetries,
		MaxSubjectLength: m.cfg.MaxSubjectLength,
	}
}

// Provider returns the configured provider, building it on first use.
func (m *Manager) Provider() (provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider != nil {
		return m.provider, nil
	}
	p, err := m.newProvider(m.ProviderConfig())
	if err != nil {
		return nil, err
	}
	m.provider = p
	return p, nil
}

// Generator returns a pipeline bound to the configured provider. Usage is
// recorded, and the cost limit enforced, only when tracking is enabled.
func (m *Manager) Generator(ticketID string) (*generate.Service, error) {
	p, err := m.Provider()
	if err != nil {
		return nil, err
	}

	var recorder generate.Recorder
	if m.cfg.TrackUsage {
		recorder = m.usage
	}

	if ticketID == "" {
		ticketID = m.cfg.TicketID
	}

	return generate.New(p, recorder, m.cfg.CostLimitMonthly, generate.PromptOptions{
		Format:       m.cfg.CommitFormat,
		Template:     m.cfg.CustomTemplate,
		TicketID:     ticketID,
		IncludeEmoji: m.cfg.IncludeEmoji,
	}), nil
}

// Usage returns the usage service.
func (m *Manager) Usage() *usage.Service {
	return m.usage
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Snapshot collects the dashboard aggregates.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Total, err = m.usage.Total(ctx); err != nil {
		return nil, err
	}
	if snap.Monthly, err = m.usage.Monthly(ctx); err != nil {
		return nil, err
	}
	if snap.ByProvider, err = m.usage.ByProvider(ctx); err != nil {
		return nil, err
	}
	if snap.Limit, err = m.usage.CheckMonthlyLimit(ctx, m.cfg.CostLimitMonthly); err != nil {
		return nil, err
	}
	if snap.Daily, err = m.usage.DailyCost(ctx, SnapshotDays); err != nil {
		return nil, err
	}
	return &snap, nil
}

// StartWatching begins routing usage database changes to subscribers.
func (m *Manager) StartWatching() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		return nil
	}
	w, err := watcher.New(m.database.Path())
	if err != nil {
		return err
	}
	m.watcher = w

	go m.routeEvents(w)
	return nil
}

// routeEvents routes watcher events to subscribers.
func (m *Manager) routeEvents(w *watcher.Service) {
	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			m.handleWatcherEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleWatcherEvent(event watcher.Event) {
	switch event.Type {
	case watcher.EventChanged:
		snap, err := m.Snapshot(context.Background())
		if err != nil {
			m.broadcast(ErrorEvent{Service: "usage", Error: err})
			return
		}
		m.broadcast(UsageUpdatedEvent{Snapshot: snap})

	case watcher.EventError:
		m.broadcast(ErrorEvent{Service: "watcher", Error: event.Error})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() { close(m.stopChan) })

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	var errs []error
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
