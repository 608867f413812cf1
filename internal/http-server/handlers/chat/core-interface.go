package chat

import (
	"WhatsGrapp/entity"
	"context"
)

type Core interface {
	ProcessChatMessage(ctx context.Context, req *entity.ChatMessageRequest) (*entity.ChatReply, error)
	ChatMessages(ctx context.Context, phone string, limit, offset int) ([]*entity.ChatMessage, error)
}
