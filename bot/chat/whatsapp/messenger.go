package whatsapp

import (
	"WhatsGrapp/entity"
	"context"
	"time"
)

// MessageSender can send a text message to a recipient.
type MessageSender interface {
	SendMessage(ctx context.Context, recipientPhone, text string) error
}

// MessageListener records delivered messages.
type MessageListener interface {
	OnMessage(ctx context.Context, msg *entity.ChatMessage)
}

// Notifier delivers out-of-band onboarding messages over WhatsApp.
type Notifier struct {
	sender   MessageSender
	listener MessageListener
}

func NewNotifier(sender MessageSender, listener MessageListener) *Notifier {
	return &Notifier{sender: sender, listener: listener}
}

func (n *Notifier) SendMessage(ctx context.Context, phone, text string) error {
	if err := n.sender.SendMessage(ctx, phone, text); err != nil {
		return err
	}
	if n.listener != nil {
		n.listener.OnMessage(ctx, &entity.ChatMessage{
			Platform:  entity.PlatformWhatsApp,
			Phone:     phone,
			Direction: entity.DirectionOutgoing,
			Text:      text,
			CreatedAt: time.Now(),
		})
	}
	return nil
}
