// Package watcher reports changes to a file and its sqlite companions
// (-wal, -journal) with debouncing.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maadhav-codes/diff2commit/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// EventType defines the type of watcher event.
type EventType int

const (
	EventChanged EventType = iota
	EventError
)

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Error error
}

// Service watches one file for writes.
type Service struct {
	mu            sync.Mutex
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closed        bool
}

// New starts watching filePath. The parent directory must exist.
func New(filePath string) (*Service, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory to catch the file being created or replaced.
	if err := w.Add(filepath.Dir(filePath)); err != nil {
		if closeErr := w.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(filePath), err)
	}

	s := &Service{
		filePath:  filePath,
		watcher:   w,
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}
	go s.watchLoop()
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

func (s *Service) matches(name string) bool {
	return strings.HasPrefix(filepath.Base(name), filepath.Base(s.filePath))
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.sendEvent(Event{Type: EventChanged})
				})
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends without blocking. A full channel already holds a pending
// change, so the event is dropped.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops watching.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	close(s.stopChan)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	return s.watcher.Close()
}
