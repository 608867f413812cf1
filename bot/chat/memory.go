package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session stays active after its last refresh.
const DefaultSessionTTL = 24 * time.Hour

// MemorySessionStore keeps sessions in process memory. Every operation holds
// one mutex, so updates for a phone never interleave.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]*Session
	ttl      time.Duration
	now      func() time.Time
}

type MemoryOption func(*MemorySessionStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemorySessionStore) {
		s.now = now
	}
}

func NewMemorySessionStore(ttl time.Duration, opts ...MemoryOption) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	store := &MemorySessionStore{
		sessions: make(map[string][]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// active returns the most recently active non-expired session. Caller holds mu.
func (s *MemorySessionStore) active(phone string, now time.Time) *Session {
	var latest *Session
	for _, sess := range s.sessions[phone] {
		if !sess.Active(now) {
			continue
		}
		if latest == nil || !sess.LastActivity.Before(latest.LastActivity) {
			latest = sess
		}
	}
	return latest
}

func (s *MemorySessionStore) Get(_ context.Context, phone string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.active(phone, s.now())
	if sess == nil {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (s *MemorySessionStore) Create(_ context.Context, phone string, initialStep StepID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(phone, now)

	sess := &Session{
		ID:           uuid.NewString(),
		Phone:        phone,
		CurrentStep:  initialStep,
		Data:         NewSessionData(),
		History:      []HistoryEntry{},
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	s.sessions[phone] = append(s.sessions[phone], sess)
	return sess.Clone(), nil
}

func (s *MemorySessionStore) Update(_ context.Context, phone string, patch Patch) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.active(phone, now)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	if patch.CurrentStep != "" {
		sess.CurrentStep = patch.CurrentStep
	}
	if patch.Data != nil {
		sess.Data = patch.Data.Clone()
	}
	sess.History = append(sess.History, patch.History...)
	sess.LastActivity = now
	sess.ExpiresAt = now.Add(s.ttl)

	return sess.Clone(), nil
}

func (s *MemorySessionStore) AppendHistory(ctx context.Context, phone string, entry HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	_, err := s.Update(ctx, phone, Patch{History: []HistoryEntry{entry}})
	return err
}

func (s *MemorySessionStore) Expire(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(phone, s.now())
	return nil
}

// expire ends all active sessions of the phone. Caller holds mu.
func (s *MemorySessionStore) expire(phone string, now time.Time) {
	for _, sess := range s.sessions[phone] {
		if sess.Active(now) {
			sess.ExpiresAt = now
		}
	}
}

func (s *MemorySessionStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for phone, list := range s.sessions {
		kept := list[:0]
		for _, sess := range list {
			if sess.Active(now) {
				kept = append(kept, sess)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(s.sessions, phone)
		} else {
			s.sessions[phone] = kept
		}
	}
	return removed, nil
}

func (s *MemorySessionStore) CountActive(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var count int64
	for _, list := range s.sessions {
		for _, sess := range list {
			if sess.Active(now) {
				count++
			}
		}
	}
	return count, nil
}
