package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map so the in-process broadcast keeps working.
//   - Every change writes a JSON snapshot to survey:session:{id} with the TTL, so
//     liveness and progress are visible to other instances and operators.
//   - A session whose snapshot has expired in Redis is treated as gone: it is
//     evicted on access or by Sweep and its subscriptions are closed.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(ctx context.Context, session *app.Session) error {
	if err := s.writeSnapshot(ctx, session.State()); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	return nil
}

// Get returns a live session and slides its snapshot TTL forward, so readers
// keep a session alive as well as writers.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	alive, err := s.client.Expire(ctx, s.key(sessionID), s.ttl).Result()
	if err != nil {
		// Redis unavailable: keep serving the local session.
		slog.Warn("session liveness check failed", "session", sessionID, "error", err)
		return session, true
	}
	if !alive {
		s.evict(sessionID, session)
		return nil, false
	}
	return session, true
}

// Sweep drops every local session whose snapshot has expired in Redis and
// closes its subscriptions. It reports how many sessions went.
func (s *SessionStore) Sweep(ctx context.Context) int {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if len(ids) == 0 {
		return 0
	}

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("session sweep failed", "error", err)
		return 0
	}

	dropped := 0
	for i, id := range ids {
		if checks[i].Val() != 0 {
			continue
		}
		s.mu.RLock()
		session, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok && s.evict(id, session) {
			dropped++
		}
	}
	if dropped > 0 {
		slog.Info("expired sessions dropped", "count", dropped)
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
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
			s.Sweep(ctx)
		}
	}
}

// Len reports how many sessions are held locally.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evict removes session if it is still the one stored under id.
func (s *SessionStore) evict(id string, session *app.Session) bool {
	s.mu.Lock()
	current, ok := s.sessions[id]
	if ok && current == session {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok || current != session {
		return false
	}
	session.Close()
	return true
}

// Touch refreshes the snapshot and its TTL.
func (s *SessionStore) Touch(ctx context.Context, session *app.Session) error {
	return s.writeSnapshot(ctx, session.State())
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(ctx, s.key(sessionID)).Err()
}

// Snapshot reads the stored state of a session.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (domain.SessionState, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionState{}, err
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

func (s *SessionStore) writeSnapshot(ctx context.Context, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(state.SessionID), data, s.ttl).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "survey:session:" + sessionID
}
