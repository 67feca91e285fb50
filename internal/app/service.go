package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessiontimer/internal/adapter/metrics"
	"github.com/pscheid92/sessiontimer/internal/domain"
	"github.com/pscheid92/sessiontimer/internal/registry"
	"golang.org/x/sync/singleflight"
)

const stateReadKey = "state"

// Service orchestrates the session use cases on top of a SessionStore.
type Service struct {
	store   domain.SessionStore
	clock   clockwork.Clock
	metrics *metrics.SessionMetrics

	mu    sync.Mutex
	reads singleflight.Group
}

// NewService creates the application layer service. m may be nil.
func NewService(store domain.SessionStore, clock clockwork.Clock, m *metrics.SessionMetrics) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		metrics: m,
	}
}

// State returns the current document. Concurrent callers share one store read; a
// successful write starts a new read for everyone arriving after it.
func (s *Service) State(ctx context.Context) (*domain.Document, error) {
	v, err, _ := s.reads.Do(stateReadKey, func() (any, error) {
		doc, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		return registry.List(doc), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return v.(*domain.Document), nil
}

// AddSession validates req, then appends a new session under the write lock.
func (s *Service) AddSession(ctx context.Context, req registry.AddRequest) (domain.Session, error) {
	req, err := req.Validate()
	if err != nil {
		return domain.Session{}, err
	}

	var added domain.Session
	err = s.mutate(ctx, "add", func(doc *domain.Document) (*domain.Document, error) {
		next, session, err := registry.Add(doc, req, s.clock.Now())
		added = session
		return next, err
	})
	if err != nil {
		return domain.Session{}, err
	}

	slog.InfoContext(ctx, "Session added",
		"session_id", added.ID,
		"nick", added.Nick,
		"players", added.Players,
		"minutes", added.Minutes)
	return added, nil
}

// RemoveSession deletes the session with id. Unknown ids succeed without changes.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	var (
		removed domain.Session
		found   bool
	)
	err := s.mutate(ctx, "remove", func(doc *domain.Document) (*domain.Document, error) {
		removed, found = registry.Find(doc, id)
		return registry.Remove(doc, id), nil
	})
	if err != nil {
		return err
	}

	if found {
		now := s.clock.Now()
		slog.InfoContext(ctx, "Session removed",
			"session_id", id,
			"nick", removed.Nick,
			"expired", removed.Expired(now),
			"remaining", removed.Remaining(now))
	} else {
		slog.DebugContext(ctx, "Remove for unknown session ignored", "session_id", id)
	}
	return nil
}

// Clear drops every session. It does not read the current document, so it also
// recovers from a corrupt state file.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := registry.Clear()
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	s.reads.Forget(stateReadKey)
	s.metrics.Record("clear", 0)

	slog.InfoContext(ctx, "Sessions cleared")
	return nil
}

// mutate runs one load-modify-save cycle while holding the write lock.
func (s *Service) mutate(ctx context.Context, op string, apply func(*domain.Document) (*domain.Document, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	next, err := apply(doc)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	s.reads.Forget(stateReadKey)
	s.metrics.Record(op, len(next.Sessions))
	return nil
}
