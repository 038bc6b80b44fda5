package service

import (
	"sort"
	"sync"
	"time"

	"paper-analytics/internal/workflow"
	"paper-analytics/log"
	apperrors "paper-analytics/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 16

// Session is one UI workflow: an orchestrator plus its live subscribers.
type Session struct {
	ID        string
	CreatedAt time.Time

	orch *workflow.Orchestrator

	subsMu sync.Mutex
	subs   map[chan workflow.View]struct{}
	closed bool
}

func (s *Session) Orchestrator() *workflow.Orchestrator {
	return s.orch
}

// Subscribe registers a view stream. The current view is delivered first.
// The channel is closed when the session is deleted or the subscriber falls
// behind; cancel is safe to call more than once.
func (s *Session) Subscribe() (<-chan workflow.View, func()) {
	ch := make(chan workflow.View, defaultSubscriberBuffer)

	// Lock order is orchestrator then subsMu, the same as broadcast.
	s.orch.Observe(func(v workflow.View) {
		ch <- v
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if s.closed {
			close(ch)
			return
		}
		s.subs[ch] = struct{}{}
	})

	return ch, func() { s.unsubscribe(ch) }
}

func (s *Session) unsubscribe(ch chan workflow.View) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// broadcast never blocks; a subscriber whose buffer is full is dropped.
func (s *Session) broadcast(v workflow.View) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- v:
		default:
			log.GetLogger().Warn("dropping slow session subscriber", zap.String("session_id", s.ID))
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.closed = true
	for ch := range s.subs {
		close(ch)
	}
	s.subs = map[chan workflow.View]struct{}{}
}

func (s *Session) subscriberCount() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// Sessions is the bounded in-memory session registry.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	factory  OrchestratorFactory
	now      func() time.Time
}

func NewSessions(max int, factory OrchestratorFactory) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		max:      max,
		factory:  factory,
		now:      time.Now,
	}
}

func (r *Sessions) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.sessions) >= r.max {
		return nil, apperrors.ErrSessionLimit
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now(),
		subs:      make(map[chan workflow.View]struct{}),
	}
	s.orch = r.factory(s.broadcast)
	r.sessions[s.ID] = s

	log.GetLogger().Info("session created", zap.String("session_id", s.ID), zap.Int("active", len(r.sessions)))
	return s, nil
}

func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

// Delete resets the session's workflow and closes its subscribers.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.orch.Reset()
	s.closeSubscribers()
	log.GetLogger().Info("session deleted", zap.String("session_id", id))
	return nil
}

// Shutdown cancels every active run and ends all subscriptions. Sessions
// stay registered.
func (r *Sessions) Shutdown() {
	r.mu.RLock()
	all := lo.Values(r.sessions)
	r.mu.RUnlock()

	for _, s := range all {
		s.orch.Reset()
		s.closeSubscribers()
	}
	log.GetLogger().Info("all sessions reset", zap.Int("count", len(all)))
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns session ids ordered by creation time.
func (r *Sessions) IDs() []string {
	r.mu.RLock()
	all := lo.Values(r.sessions)
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return lo.Map(all, func(s *Session, _ int) string { return s.ID })
}
