package entity

import (
	"WhatsGrapp/internal/lib/validate"
	"net/http"
	"time"
)

const (
	PlatformWhatsApp = "whatsapp"
	PlatformWeb      = "web"
	PlatformAI       = "ai"
	PlatformCLI      = "cli"
)

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// ChatMessage is a single logged message of a WhatsApp, web or AI conversation.
type ChatMessage struct {
	ID        string    `json:"id" bson:"id"`
	Platform  string    `json:"platform" bson:"platform"`
	Phone     string    `json:"phone" bson:"phone"`
	Direction string    `json:"direction" bson:"direction"`
	Text      string    `json:"text" bson:"text"`
	Intent    string    `json:"intent,omitempty" bson:"intent,omitempty"`
	Step      string    `json:"step,omitempty" bson:"step,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ChatMessageRequest struct {
	Phone   string `json:"phone" validate:"required,min=3,max=32"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (c *ChatMessageRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

type ChatReply struct {
	Phone string `json:"phone"`
	Reply string `json:"reply"`
	Step  string `json:"step,omitempty"`
}
