package whatsapp

import (
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"
)

type Bot interface {
	HandleWebhookVerification(w http.ResponseWriter, r *http.Request)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// WebhookVerify handles GET requests for webhook verification
func WebhookVerify(log *slog.Logger, bot Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.With(sl.Module("whatsapp.webhook")).Debug("webhook verification request")
		bot.HandleWebhookVerification(w, r)
	}
}

// WebhookHandler handles POST requests for incoming messages
func WebhookHandler(log *slog.Logger, bot Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.With(sl.Module("whatsapp.webhook")).Debug("webhook message received")
		bot.HandleWebhook(w, r)
	}
}
