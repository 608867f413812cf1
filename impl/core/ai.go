package core

import (
	"WhatsGrapp/ai/intent"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	aiPromptProducts = 20
	aiDefaultPhone   = "web-chat"
)

// AiChat answers a free-form question with the intent responder and runs the
// suggested registration or product action when the answer carries one.
func (c *Core) AiChat(ctx context.Context, req *entity.AiChatRequest) (*entity.AiAnswer, error) {
	if c.responder == nil {
		return nil, fmt.Errorf("responder is not set")
	}
	phone := req.Phone
	if phone == "" {
		phone = aiDefaultPhone
	}

	products, err := c.promptProducts(ctx, req.MerchantID)
	if err != nil {
		c.log.Warn("ai chat: products unavailable", sl.Err(err))
	}

	answer := c.responder.Respond(ctx, intent.ChatContext{
		Message:      req.Message,
		MerchantName: req.MerchantName,
		Products:     products,
		History:      req.ChatHistory,
	})

	if answer.NextAction != nil {
		c.runNextAction(ctx, req, answer.NextAction)
	}

	c.OnMessage(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformAI,
		Phone:     phone,
		Direction: entity.DirectionIncoming,
		Text:      req.Message,
	})
	c.OnMessage(ctx, &entity.ChatMessage{
		Platform:  entity.PlatformAI,
		Phone:     phone,
		Direction: entity.DirectionOutgoing,
		Text:      answer.Text,
		Intent:    answer.Intent,
	})

	return &answer, nil
}

func (c *Core) promptProducts(ctx context.Context, merchantID string) ([]entity.Product, error) {
	var (
		list []*entity.Product
		err  error
	)
	if merchantID != "" {
		list, err = c.repo.ListProducts(ctx, merchantID)
	} else {
		list, err = c.repo.RecentProducts(ctx, aiPromptProducts)
	}
	if err != nil {
		return nil, err
	}

	products := make([]entity.Product, 0, min(len(list), aiPromptProducts))
	for _, p := range list {
		if len(products) == aiPromptProducts {
			break
		}
		products = append(products, *p)
	}
	return products, nil
}

// runNextAction executes registration and product actions best-effort.
func (c *Core) runNextAction(ctx context.Context, req *entity.AiChatRequest, action *entity.NextAction) {
	log := c.log.With(slog.String("action", action.Type))

	switch action.Type {
	case entity.ActionRegisterMerchant:
		name := dataString(action.Data, "name")
		phone := dataString(action.Data, "phone")
		if name == "" || phone == "" {
			log.Debug("ai chat: incomplete merchant data")
			return
		}
		id, err := c.CreateMerchant(ctx, phone, name, dataString(action.Data, "description"), entity.SGD, "")
		if err != nil {
			log.Error("ai chat: register merchant", sl.Err(err))
			return
		}
		action.Data["merchant_id"] = id

	case entity.ActionAddProduct:
		if req.MerchantID == "" {
			log.Debug("ai chat: no merchant for product")
			return
		}
		name := dataString(action.Data, "name")
		price, _ := action.Data["price"].(float64)
		if name == "" || price <= 0 {
			log.Debug("ai chat: incomplete product data")
			return
		}
		id, err := c.CreateProduct(ctx, req.MerchantID, name, price, 1)
		if err != nil {
			log.Error("ai chat: add product", sl.Err(err))
			return
		}
		action.Data["product_id"] = id
		action.Data["checkout_url"] = c.links.Checkout(req.MerchantID, id)
	}
}

func dataString(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return strings.TrimSpace(v)
}
