package core

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ProcessChatMessage runs a web chat message through the onboarding conversation.
func (c *Core) ProcessChatMessage(ctx context.Context, req *entity.ChatMessageRequest) (*entity.ChatReply, error) {
	if c.processor == nil {
		return nil, fmt.Errorf("message processor is not set")
	}
	phone := chat.NormalizePhone(req.Phone)

	c.OnMessage(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformWeb,
		Phone:     phone,
		Direction: entity.DirectionIncoming,
		Text:      req.Message,
	})

	reply, err := c.processor.ProcessMessage(ctx, phone, req.Message)
	if err != nil {
		c.log.Error("process chat message", sl.Phone(phone), sl.Err(err))
	}

	result := &entity.ChatReply{Phone: phone, Reply: reply}
	if c.sessions != nil {
		if session, sErr := c.sessions.Get(ctx, phone); sErr == nil && session != nil {
			result.Step = string(session.CurrentStep)
		}
	}

	c.OnMessage(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformWeb,
		Phone:     phone,
		Direction: entity.DirectionOutgoing,
		Text:      reply,
		Step:      result.Step,
	})
	return result, nil
}

// OnMessage stores a chat message and pushes it to the monitor. Failures are only logged.
func (c *Core) OnMessage(ctx context.Context, msg *entity.ChatMessage) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if c.repo != nil {
		if err := c.repo.SaveChatMessage(ctx, msg); err != nil {
			c.log.Error("failed to save chat message",
				slog.String("platform", msg.Platform),
				sl.Phone(msg.Phone),
				sl.Err(err),
			)
		}
	}

	if c.hub != nil {
		c.hub.BroadcastMessage(*msg)
	}
}

func (c *Core) ChatMessages(ctx context.Context, phone string, limit, offset int) ([]*entity.ChatMessage, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	if phone != "" {
		phone = chat.NormalizePhone(phone)
	}
	messages, err := c.repo.GetChatMessages(ctx, phone, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	if messages == nil {
		messages = []*entity.ChatMessage{}
	}
	return messages, nil
}

func (c *Core) GetSession(ctx context.Context, phone string) (*chat.Session, error) {
	session, err := c.sessions.Get(ctx, chat.NormalizePhone(phone))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", phone, entity.ErrNotFound)
	}
	return session, nil
}

// ResetSession expires the phone's conversation; the next message starts over.
func (c *Core) ResetSession(ctx context.Context, phone string) error {
	phone = chat.NormalizePhone(phone)
	if err := c.sessions.Expire(ctx, phone); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	c.log.Info("session reset", sl.Phone(phone))
	return nil
}

func (c *Core) CountActiveSessions(ctx context.Context) (int64, error) {
	return c.sessions.CountActive(ctx)
}

func (c *Core) CleanupSessions(ctx context.Context) (int64, error) {
	removed, err := c.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	metrics.SessionsCleaned(removed)
	c.log.Info("expired sessions removed", slog.Int64("count", removed))
	return removed, nil
}

// AdminStats is the short status report sent to the admin chat.
func (c *Core) AdminStats(ctx context.Context) (string, error) {
	active, err := c.CountActiveSessions(ctx)
	if err != nil {
		return "", err
	}
	merchants, err := c.repo.ListMerchants(ctx, defaultPageSize, 0)
	if err != nil {
		return "", fmt.Errorf("list merchants: %w", err)
	}

	text := fmt.Sprintf("Active sessions: %d\nRecent merchants: %d", active, len(merchants))
	if len(merchants) > 0 {
		text += fmt.Sprintf("\nLatest store: %s (%s)", merchants[0].StoreName, merchants[0].Currency)
	}
	return text, nil
}
