package session

import (
	"WhatsGrapp/bot/chat"
	"context"
)

type Core interface {
	GetSession(ctx context.Context, phone string) (*chat.Session, error)
	ResetSession(ctx context.Context, phone string) error
	CountActiveSessions(ctx context.Context) (int64, error)
	CleanupSessions(ctx context.Context) (int64, error)
}
