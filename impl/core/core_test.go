package core

import (
	"WhatsGrapp/ai/intent"
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/bot/chat/onboarding"
	"WhatsGrapp/entity"
	repository "WhatsGrapp/internal/database"
	"WhatsGrapp/internal/lock"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	mu       sync.Mutex
	messages []entity.ChatMessage
}

func (h *fakeHub) BroadcastMessage(msg entity.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

type testCore struct {
	*Core
	repo     *repository.Memory
	sessions *chat.MemorySessionStore
	hub      *fakeHub
}

func newTestCore(t *testing.T) *testCore {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repository.NewMemory()
	sessions := chat.NewMemorySessionStore(time.Hour)
	hub := &fakeHub{}

	c := New(log)
	c.SetRepository(repo)
	c.SetSessionStore(sessions)
	c.SetBroadcaster(hub)
	c.SetAppURL("https://shop.example.com/")
	c.SetAuthKey("secret")
	c.SetResponder(intent.NewResponder(nil, log))

	workflow := onboarding.NewOnboardingWorkflow(c, c, nil, "https://shop.example.com", log)
	c.SetMessageProcessor(chat.NewChatEngine(workflow, sessions, lock.NewLocal(), log))

	return &testCore{Core: c, repo: repo, sessions: sessions, hub: hub}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	merchant, err := c.RegisterMerchant(ctx, &entity.MerchantRequest{
		Phone:           "+65 1111 2222",
		StoreName:       "Tech Store",
		BusinessDetails: "Phones and accessories",
		Currency:        entity.SGD,
		Locale:          "en-SG",
	})
	require.NoError(t, err)
	assert.Equal(t, "+6511112222", merchant.Phone)

	info, err := c.AddProduct(ctx, &entity.ProductRequest{MerchantID: merchant.ID, Name: "iPhone 15", Price: 1200, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, "SGD 1,200.00", info.PriceText)
	assert.Equal(t, "https://shop.example.com/checkout/"+merchant.ID+"/"+info.ID, info.CheckoutUrl)

	list, err := c.ListProducts(ctx, merchant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.ID, list[0].ID)

	byPhone, err := c.MerchantByPhone(ctx, "+6511112222")
	require.NoError(t, err)
	assert.Equal(t, merchant.ID, byPhone.ID)

	_, err = c.GetMerchant(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = c.AddProduct(ctx, &entity.ProductRequest{MerchantID: "missing", Name: "x", Price: 1})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = c.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	merchantID, err := c.CreateMerchant(ctx, "+6511112222", "Tech Store", "Phones and accessories", entity.SGD, "")
	require.NoError(t, err)
	productID, err := c.CreateProduct(ctx, merchantID, "Case", 19.99, 3)
	require.NoError(t, err)

	order, err := c.Checkout(ctx, &entity.CheckoutRequest{
		MerchantID: merchantID, ProductID: productID, Quantity: 2, CustomerPhone: "+6599998888",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPaid, order.Status)
	assert.Equal(t, 39.98, order.Amount)
	assert.Equal(t, entity.SGD, order.Currency)
	assert.Contains(t, order.PaymentRef, "pay_")

	stored, err := c.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)

	_, err = c.Checkout(ctx, &entity.CheckoutRequest{
		MerchantID: merchantID, ProductID: productID, Quantity: 2, CustomerPhone: "+6599998888",
	})
	assert.ErrorIs(t, err, entity.ErrOutOfStock)

	otherID, _ := c.CreateMerchant(ctx, "+6500000000", "Other", "Another business here", entity.THB, "")
	_, err = c.Checkout(ctx, &entity.CheckoutRequest{
		MerchantID: otherID, ProductID: productID, Quantity: 1, CustomerPhone: "+6599998888",
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = c.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

// ordersDown fails every order write.
type ordersDown struct {
	*repository.Memory
}

func (ordersDown) SaveOrder(context.Context, *entity.Order) error {
	return errors.New("orders collection unavailable")
}

func TestCheckoutReleasesStockWhenOrderFails(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	merchantID, err := c.CreateMerchant(ctx, "+6511112222", "Tech Store", "Phones and accessories", entity.SGD, "")
	require.NoError(t, err)
	productID, err := c.CreateProduct(ctx, merchantID, "Case", 19.99, 3)
	require.NoError(t, err)

	c.SetRepository(ordersDown{Memory: c.repo})
	_, err = c.Checkout(ctx, &entity.CheckoutRequest{
		MerchantID: merchantID, ProductID: productID, Quantity: 2, CustomerPhone: "+6599998888",
	})
	require.ErrorContains(t, err, "save order")

	product, err := c.repo.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, product.Stock)

	stats, err := c.SalesStats(ctx, merchantID)
	require.NoError(t, err)
	assert.Zero(t, stats.Orders)
}

func TestStatusCheckShowsSales(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	merchantID, err := c.CreateMerchant(ctx, "+6511112222", "Tech Store", "Phones and accessories", entity.SGD, "")
	require.NoError(t, err)
	productID, err := c.CreateProduct(ctx, merchantID, "Case", 20, 5)
	require.NoError(t, err)
	_, err = c.Checkout(ctx, &entity.CheckoutRequest{
		MerchantID: merchantID, ProductID: productID, Quantity: 2, CustomerPhone: "+6599998888",
	})
	require.NoError(t, err)

	stats, err := c.SalesStats(ctx, merchantID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesStats{Orders: 1, Revenue: 40}, stats)

	reply, err := c.processor.ProcessMessage(ctx, "+6511112222", "status")
	require.NoError(t, err)
	assert.Contains(t, reply, "Case - SGD 20.00 (3 in stock)")
	assert.Contains(t, reply, "🧾 Orders: 1")
	assert.Contains(t, reply, "💵 Sales: SGD 40.00")
}

func TestProcessChatMessage(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	reply, err := c.ProcessChatMessage(ctx, &entity.ChatMessageRequest{Phone: "+65 1111 2222", Message: "1"})
	require.NoError(t, err)
	assert.Equal(t, "+6511112222", reply.Phone)
	assert.Equal(t, string(onboarding.StepStoreName), reply.Step)
	assert.Contains(t, reply.Reply, "store name")

	session, err := c.GetSession(ctx, "+6511112222")
	require.NoError(t, err)
	assert.Len(t, session.History, 1)

	msgs, err := c.ChatMessages(ctx, "+6511112222", 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.DirectionOutgoing, msgs[0].Direction)
	assert.Len(t, c.hub.messages, 2)

	active, err := c.CountActiveSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)

	require.NoError(t, c.ResetSession(ctx, "+6511112222"))
	_, err = c.GetSession(ctx, "+6511112222")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	removed, err := c.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestAiChatRegistersMerchant(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	answer, err := c.AiChat(ctx, &entity.AiChatRequest{
		Message: "Tech Store, +65 9123 4567, We sell latest electronics",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.IntentMerchantRegistration, answer.Intent)
	assert.Equal(t, intent.SourceRules, answer.Source)
	require.NotNil(t, answer.NextAction)
	assert.NotEmpty(t, answer.NextAction.Data["merchant_id"])

	merchant, err := c.MerchantByPhone(ctx, "+6591234567")
	require.NoError(t, err)
	require.NotNil(t, merchant)
	assert.Equal(t, "Tech Store", merchant.StoreName)

	msgs, _ := c.ChatMessages(ctx, aiDefaultPhone, 10, 0)
	assert.Len(t, msgs, 2)
}

func TestAiChatAddsProduct(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	merchantID, _ := c.CreateMerchant(ctx, "+6511112222", "Tech Store", "Phones and accessories", entity.SGD, "")
	answer, err := c.AiChat(ctx, &entity.AiChatRequest{
		Message:    "AirPods Pro, 300, Wireless earbuds",
		MerchantID: merchantID,
	})
	require.NoError(t, err)
	require.NotNil(t, answer.NextAction)
	assert.Equal(t, entity.ActionAddProduct, answer.NextAction.Type)

	count, _ := c.CountProducts(ctx, merchantID)
	assert.EqualValues(t, 1, count)
}

func TestAuthenticateByToken(t *testing.T) {
	c := newTestCore(t)

	user, err := c.AuthenticateByToken("secret")
	require.NoError(t, err)
	assert.Equal(t, adminUser, user.Username)

	key, err := c.GenerateApiKey("web")
	require.NoError(t, err)
	user, err = c.AuthenticateByToken(key)
	require.NoError(t, err)
	assert.Equal(t, "web", user.Username)

	_, err = c.AuthenticateByToken("wrong")
	assert.Error(t, err)
	_, err = c.AuthenticateByToken("")
	assert.Error(t, err)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	_, _ = c.CreateMerchant(ctx, "+6511112222", "Sarah's Bakery", "Fresh baked goods", entity.SGD, "")
	text, err := c.AdminStats(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Active sessions: 0")
	assert.Contains(t, text, "Sarah's Bakery (SGD)")
}
