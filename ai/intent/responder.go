package intent

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	maxPromptProducts = 20
	maxPromptHistory  = 5
	providerTimeout   = 30 * time.Second

	MsgTrouble = "I apologize, but I'm having trouble processing your request right now. How else can I help you?"
)

// Provider is a language model able to answer with a JSON document.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ChatContext is everything the responder knows about the exchange.
type ChatContext struct {
	Message      string
	MerchantName string
	Products     []entity.Product
	History      []entity.DialogMessage
}

type Responder struct {
	provider Provider
	log      *slog.Logger
}

// NewResponder creates a responder; provider may be nil, then only rules are used.
func NewResponder(provider Provider, log *slog.Logger) *Responder {
	return &Responder{
		provider: provider,
		log:      log.With(sl.Module("ai.intent")),
	}
}

// Respond asks the provider first and falls back to the keyword rules on any failure.
func (r *Responder) Respond(ctx context.Context, c ChatContext) entity.AiAnswer {
	if r.provider != nil {
		answer, err := r.ask(ctx, c)
		if err == nil {
			metrics.IntentClassified(answer.Intent, answer.Source)
			return answer
		}
		r.log.Warn("provider failed, using rules",
			slog.String("provider", r.provider.Name()),
			sl.Err(err),
		)
	}

	answer := RuleBased(c)
	Normalize(&answer, c.Message)
	answer.Source = SourceRules
	metrics.IntentClassified(answer.Intent, answer.Source)
	return answer
}

func (r *Responder) ask(ctx context.Context, c ChatContext) (entity.AiAnswer, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	raw, err := r.provider.Generate(ctx, systemPrompt, BuildPrompt(c))
	if err != nil {
		return entity.AiAnswer{}, err
	}

	answer, err := ParseAnswer(raw)
	if err != nil {
		return entity.AiAnswer{}, err
	}
	Normalize(&answer, c.Message)
	answer.Source = "llm:" + r.provider.Name()
	return answer, nil
}

// ParseAnswer extracts the JSON object from a model reply, tolerating code fences
// and surrounding prose.
func ParseAnswer(raw string) (entity.AiAnswer, error) {
	var answer entity.AiAnswer
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return answer, fmt.Errorf("no json object in model reply")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &answer); err != nil {
		return answer, fmt.Errorf("decode model reply: %w", err)
	}
	if strings.TrimSpace(answer.Text) == "" {
		return answer, fmt.Errorf("model reply has no text")
	}
	return answer, nil
}

const systemPrompt = `You are WhatsGrapp AI, a helpful e-commerce assistant on WhatsApp.
You help customers browse products, help merchants register their business and add products,
and generate checkout links. Be friendly, concise and use emojis sparingly.

Reply ONLY with a JSON object:
{
  "text": "reply shown to the user",
  "intent": "greeting|product_inquiry|merchant_registration|add_product|checkout|general|help",
  "suggestions": ["up to 3 quick replies"],
  "product_recommendations": ["product names"],
  "next_action": {"type": "show_products|register_merchant|add_product|checkout|continue_chat", "data": {}}
}`

// BuildPrompt renders the catalog, merchant and recent dialog for the provider.
func BuildPrompt(c ChatContext) string {
	var sb strings.Builder

	if len(c.Products) > 0 {
		sb.WriteString("Available products:\n")
		for i, p := range c.Products {
			if i == maxPromptProducts {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %.2f", p.Name, p.Price))
			if p.Description != "" {
				sb.WriteString(" - " + p.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if c.MerchantName != "" {
		sb.WriteString(fmt.Sprintf("Merchant: %s\n\n", c.MerchantName))
	}

	history := c.History
	if len(history) > maxPromptHistory {
		history = history[len(history)-maxPromptHistory:]
	}
	if len(history) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, m := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("User message: ")
	sb.WriteString(c.Message)
	return sb.String()
}
