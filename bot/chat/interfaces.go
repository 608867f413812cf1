package chat

import (
	"context"
	"errors"
)

// StepID is a unique identifier for a step within a workflow.
type StepID string

// StepEnd is the terminal marker. It is never registered as a step.
const StepEnd StepID = "end"

var ErrSessionNotFound = errors.New("no active session")

// Workflow is the static step registry the engine runs against.
type Workflow interface {
	// InitialStep returns the step fresh sessions start at.
	InitialStep() StepID

	// GetStep returns a step by its ID.
	GetStep(id StepID) (*Step, bool)

	// Steps lists every registered step ID.
	Steps() []StepID
}

// SessionStore handles persistence of per-phone conversation sessions.
type SessionStore interface {
	// Get returns the most recently active non-expired session, or nil.
	Get(ctx context.Context, phone string) (*Session, error)

	// Create force-expires active sessions of the phone and inserts a fresh one.
	Create(ctx context.Context, phone string, initialStep StepID) (*Session, error)

	// Update applies the patch to the active session and refreshes its activity.
	// Returns ErrSessionNotFound if the phone has no active session.
	Update(ctx context.Context, phone string, patch Patch) (*Session, error)

	AppendHistory(ctx context.Context, phone string, entry HistoryEntry) error

	// Expire ends every active session of the phone.
	Expire(ctx context.Context, phone string) error

	// CleanupExpired deletes expired sessions and returns how many were removed.
	CleanupExpired(ctx context.Context) (int64, error)

	CountActive(ctx context.Context) (int64, error)
}

// Locker serializes work on a single key, here the sender phone.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
