package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/imgprompt/internal/service"
	"github.com/vbonduro/imgprompt/internal/sessionstore"
)

// NewControllerFunc builds the controller for a new session.
type NewControllerFunc func(id string) *service.Controller

type entry struct {
	controller *service.Controller
	lastSeen   time.Time
}

// MemorySessionStore keeps sessions in process memory only. Sessions idle
// for longer than ttl are dropped by Sweep.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	newFn    NewControllerFunc
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewMemorySessionStore(newFn NewControllerFunc, ttl time.Duration, logger *slog.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*entry),
		newFn:    newFn,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

var _ sessionstore.SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Create(_ context.Context) (string, *service.Controller, error) {
	id := uuid.NewString()
	c := s.newFn(id)

	s.mu.Lock()
	s.sessions[id] = &entry{controller: c, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debug("session created", "session", id)
	return id, c, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*service.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	e.lastSeen = s.now()
	return e.controller, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return sessionstore.ErrNotFound
	}
	e.controller.Close()
	return nil
}

// Len returns the number of live sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL, skipping any with a
// generation in flight. It returns the number removed.
func (s *MemorySessionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*service.Controller
	for id, e := range s.sessions {
		if e.lastSeen.After(cutoff) || e.controller.Snapshot().Loading {
			continue
		}
		delete(s.sessions, id)
		expired = append(expired, e.controller)
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *MemorySessionStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}
