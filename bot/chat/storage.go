package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionRepository defines the database operations for sessions.
type SessionRepository interface {
	FindActiveSession(ctx context.Context, phone string, now time.Time) (*Session, error)
	ExpireSessions(ctx context.Context, phone string, now time.Time) error
	InsertSession(ctx context.Context, session *Session) error
	UpdateActiveSession(ctx context.Context, phone string, patch Patch, now, expiresAt time.Time) (*Session, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	CountActiveSessions(ctx context.Context, now time.Time) (int64, error)
}

// MongoSessionStore adapts the database repository to the SessionStore interface.
type MongoSessionStore struct {
	repo SessionRepository
	ttl  time.Duration
}

// NewMongoSessionStore creates a new MongoDB session store.
func NewMongoSessionStore(repo SessionRepository, ttl time.Duration) *MongoSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MongoSessionStore{repo: repo, ttl: ttl}
}

func (s *MongoSessionStore) Get(ctx context.Context, phone string) (*Session, error) {
	return s.repo.FindActiveSession(ctx, phone, time.Now())
}

func (s *MongoSessionStore) Create(ctx context.Context, phone string, initialStep StepID) (*Session, error) {
	now := time.Now()
	if err := s.repo.ExpireSessions(ctx, phone, now); err != nil {
		return nil, fmt.Errorf("expiring sessions: %w", err)
	}

	session := &Session{
		ID:           uuid.NewString(),
		Phone:        phone,
		CurrentStep:  initialStep,
		Data:         NewSessionData(),
		History:      []HistoryEntry{},
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return session, nil
}

func (s *MongoSessionStore) Update(ctx context.Context, phone string, patch Patch) (*Session, error) {
	now := time.Now()
	session, err := s.repo.UpdateActiveSession(ctx, phone, patch, now, now.Add(s.ttl))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *MongoSessionStore) AppendHistory(ctx context.Context, phone string, entry HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.Update(ctx, phone, Patch{History: []HistoryEntry{entry}})
	return err
}

func (s *MongoSessionStore) Expire(ctx context.Context, phone string) error {
	return s.repo.ExpireSessions(ctx, phone, time.Now())
}

func (s *MongoSessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, time.Now())
}

func (s *MongoSessionStore) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActiveSessions(ctx, time.Now())
}
