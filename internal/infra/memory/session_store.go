package memory

import (
	"context"
	"sync"
	"time"

	"wahlnetz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Every access slides the session's expiry forward by ttl; expired sessions
// are dropped on access or by Sweep. A ttl <= 0 keeps sessions until deleted.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

type storedSession struct {
	session   *app.Session
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *SessionStore) Add(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &storedSession{session: session, expiresAt: s.expiry()}
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	if s.expired(entry) {
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		entry.session.Close()
		return nil, false
	}
	entry.expiresAt = s.expiry()
	s.mu.Unlock()
	return entry.session, true
}

// Touch refreshes the session's expiry.
func (s *SessionStore) Touch(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[session.ID()]; ok {
		entry.expiresAt = s.expiry()
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep drops every expired session, closes its subscriptions and reports how many went.
func (s *SessionStore) Sweep(context.Context) int {
	s.mu.Lock()
	var dropped []*app.Session
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			dropped = append(dropped, entry.session)
		}
	}
	s.mu.Unlock()

	for _, session := range dropped {
		session.Close()
	}
	return len(dropped)
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, s.Sweep)
}

// Len reports how many sessions are held.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.clock().Add(s.ttl)
}

func (s *SessionStore) expired(entry *storedSession) bool {
	return !entry.expiresAt.IsZero() && !s.clock().Before(entry.expiresAt)
}

func runSweeper(ctx context.Context, interval time.Duration, sweep func(context.Context) int) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}
