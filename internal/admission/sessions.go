package admission

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type sessionEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions keeps one Controller per browser session so that the in-progress
// guard applies per form instance.
type Sessions struct {
	admitter Admitter
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]*sessionEntry
}

// NewSessions creates an empty registry whose controllers use admitter
func NewSessions(admitter Admitter, logger zerolog.Logger) *Sessions {
	return &Sessions{
		admitter: admitter,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[uuid.UUID]*sessionEntry),
	}
}

// Get returns the controller for id, creating it on first use
func (s *Sessions) Get(id uuid.UUID) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		entry = &sessionEntry{
			ctrl: NewController(s.admitter, s.logger.With().Str("session_id", id.String()).Logger()),
		}
		s.entries[id] = entry
	}
	entry.lastSeen = s.now()
	return entry.ctrl
}

// Sweep drops sessions idle for longer than idleFor. Sessions with a
// submission in flight are kept. Returns the number removed.
func (s *Sessions) Sweep(idleFor time.Duration) int {
	cutoff := s.now().Add(-idleFor)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if entry.lastSeen.After(cutoff) || entry.ctrl.Submitting() {
			continue
		}
		delete(s.entries, id)
		removed++
	}
	return removed
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
