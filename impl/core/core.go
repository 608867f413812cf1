package core

import (
	"WhatsGrapp/ai/intent"
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/bot/chat/onboarding"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"log/slog"
	"strings"
	"sync"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)

	SaveMerchant(ctx context.Context, merchant *entity.Merchant) error
	GetMerchant(ctx context.Context, id string) (*entity.Merchant, error)
	GetMerchantByPhone(ctx context.Context, phone string) (*entity.Merchant, error)
	ListMerchants(ctx context.Context, limit, offset int) ([]*entity.Merchant, error)

	SaveProduct(ctx context.Context, product *entity.Product) error
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	ListProducts(ctx context.Context, merchantID string) ([]*entity.Product, error)
	CountProducts(ctx context.Context, merchantID string) (int64, error)
	RecentProducts(ctx context.Context, limit int) ([]*entity.Product, error)
	ReserveStock(ctx context.Context, productID string, quantity int) (*entity.Product, error)
	ReleaseStock(ctx context.Context, productID string, quantity int) error

	SaveOrder(ctx context.Context, order *entity.Order) error
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	SalesStats(ctx context.Context, merchantID string) (entity.SalesStats, error)

	SaveChatMessage(ctx context.Context, msg *entity.ChatMessage) error
	GetChatMessages(ctx context.Context, phone string, limit, offset int) ([]*entity.ChatMessage, error)
}

type MessageProcessor interface {
	ProcessMessage(ctx context.Context, phone, text string) (string, error)
}

type Responder interface {
	Respond(ctx context.Context, c intent.ChatContext) entity.AiAnswer
}

// Broadcaster pushes logged chat messages to the live monitor.
type Broadcaster interface {
	BroadcastMessage(msg entity.ChatMessage)
}

type Core struct {
	repo      Repository
	sessions  chat.SessionStore
	processor MessageProcessor
	responder Responder
	hub       Broadcaster
	links     onboarding.Links
	authKey   string
	keys      map[string]string
	keysMu    sync.RWMutex
	log       *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:  log.With(sl.Module("core")),
		keys: make(map[string]string),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetSessionStore(sessions chat.SessionStore) {
	c.sessions = sessions
}

func (c *Core) SetMessageProcessor(processor MessageProcessor) {
	c.processor = processor
}

func (c *Core) SetResponder(responder Responder) {
	c.responder = responder
}

func (c *Core) SetBroadcaster(hub Broadcaster) {
	c.hub = hub
}

func (c *Core) SetAppURL(appURL string) {
	c.links = onboarding.Links{AppURL: strings.TrimRight(appURL, "/")}
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}
