package whatsapp

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/config"
	"WhatsGrapp/internal/lib/sl"
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	graphAPIURL       = "https://graph.facebook.com/v21.0"
	processingTimeout = 60 * time.Second
)

// MessageProcessor turns an inbound text into the reply for the sender.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, phone, text string) (string, error)
}

// MessageListener is notified about every message passing through the bot.
type MessageListener interface {
	OnMessage(ctx context.Context, msg *entity.ChatMessage)
}

// WhatsAppBot handles WhatsApp messaging via the Graph API
type WhatsAppBot struct {
	log           *slog.Logger
	accessToken   string
	verifyToken   string
	appSecret     string
	phoneNumberID string
	apiURL        string
	client        *http.Client
	limiter       *SenderLimiter
	processor     MessageProcessor
	listener      MessageListener
}

// WebhookPayload represents the incoming webhook payload from WhatsApp
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text,omitempty"`
				} `json:"messages"`
			} `json:"value"`
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

// InboundMessage is a text message extracted from a webhook payload.
type InboundMessage struct {
	From string
	Name string
	Text string
}

// SendMessageRequest represents the request body for sending a text message
type SendMessageRequest struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// NewWhatsAppBot creates a new WhatsApp bot instance
func NewWhatsAppBot(conf config.WhatsApp, log *slog.Logger) *WhatsAppBot {
	return &WhatsAppBot{
		log:           log.With(sl.Module("whatsappbot")),
		accessToken:   conf.AccessToken,
		verifyToken:   conf.VerifyToken,
		appSecret:     conf.AppSecret,
		phoneNumberID: conf.PhoneNumberID,
		apiURL:        graphAPIURL,
		client:        &http.Client{Timeout: 15 * time.Second},
		limiter:       NewSenderLimiter(conf.RatePerMinute, conf.RateBurst),
	}
}

func (b *WhatsAppBot) SetProcessor(processor MessageProcessor) {
	b.processor = processor
}

func (b *WhatsAppBot) SetListener(listener MessageListener) {
	b.listener = listener
}

// SetAPIURL points the bot at another Graph API base URL.
func (b *WhatsAppBot) SetAPIURL(url string) {
	b.apiURL = strings.TrimRight(url, "/")
}

// HandleWebhookVerification handles the GET request for webhook verification
func (b *WhatsAppBot) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == b.verifyToken {
		b.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	b.log.Warn("webhook verification failed",
		slog.String("mode", mode),
		slog.Bool("token_match", token == b.verifyToken),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POST requests
func (b *WhatsAppBot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.log.Error("failed to read request body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature if app secret is configured
	if b.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !b.verifySignature(body, signature) {
			b.log.Warn("invalid webhook signature")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		b.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Always respond with 200 OK to acknowledge receipt
	w.WriteHeader(http.StatusOK)

	messages := payload.TextMessages()
	if len(messages) == 0 {
		return
	}
	go b.processMessages(messages)
}

// TextMessages extracts non-empty text messages from a payload.
func (p WebhookPayload) TextMessages() []InboundMessage {
	if p.Object != "whatsapp_business_account" {
		return nil
	}

	var messages []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}
			for _, message := range change.Value.Messages {
				if message.Type != "text" || message.Text == nil || strings.TrimSpace(message.Text.Body) == "" {
					continue
				}
				messages = append(messages, InboundMessage{
					From: message.From,
					Name: names[message.From],
					Text: message.Text.Body,
				})
			}
		}
	}
	return messages
}

func (b *WhatsAppBot) processMessages(messages []InboundMessage) {
	for _, msg := range messages {
		ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
		b.HandleMessage(ctx, msg)
		cancel()
	}
}

// HandleMessage runs one inbound message through the processor and replies.
func (b *WhatsAppBot) HandleMessage(ctx context.Context, msg InboundMessage) {
	phone := chat.NormalizePhone(msg.From)
	log := b.log.With(sl.Phone(phone))

	if !b.limiter.Allow(phone) {
		log.Warn("sender rate limited")
		return
	}

	b.notify(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformWhatsApp,
		Phone:     phone,
		Direction: entity.DirectionIncoming,
		Text:      msg.Text,
	})

	if b.processor == nil {
		log.Warn("no message processor configured")
		return
	}

	reply, err := b.processor.ProcessMessage(ctx, phone, msg.Text)
	if err != nil {
		log.Error("processing message", sl.Err(err))
	}
	if reply == "" {
		return
	}

	if err = b.SendMessage(ctx, phone, reply); err != nil {
		log.Error("failed to send reply", sl.Err(err))
		return
	}
	b.notify(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformWhatsApp,
		Phone:     phone,
		Direction: entity.DirectionOutgoing,
		Text:      reply,
	})
}

func (b *WhatsAppBot) notify(ctx context.Context, msg *entity.ChatMessage) {
	if b.listener == nil {
		return
	}
	msg.CreatedAt = time.Now()
	b.listener.OnMessage(ctx, msg)
}

// SendMessage sends a text message to the specified recipient
func (b *WhatsAppBot) SendMessage(ctx context.Context, recipientPhone, text string) error {
	reqBody := SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               strings.TrimPrefix(recipientPhone, "+"),
		Type:             "text",
	}
	reqBody.Text.PreviewURL = false
	reqBody.Text.Body = text

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", b.apiURL, b.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	b.log.Debug("message sent", sl.Phone(recipientPhone))
	return nil
}

// verifySignature verifies the X-Hub-Signature-256 header
func (b *WhatsAppBot) verifySignature(body []byte, signature string) bool {
	expectedSig, ok := strings.CutPrefix(signature, "sha256=")
	if !ok || expectedSig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(b.appSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}
