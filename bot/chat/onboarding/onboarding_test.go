package onboarding

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lock"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMerchants struct {
	mu        sync.Mutex
	created   []entity.Merchant
	fail      error
	byPhone   *entity.Merchant
	lookupErr error
	sales     entity.SalesStats
}

func (f *fakeMerchants) CreateMerchant(_ context.Context, phone, storeName, details string, currency entity.Currency, locale string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	id := fmt.Sprintf("m-%d", len(f.created)+1)
	f.created = append(f.created, entity.Merchant{
		ID: id, Phone: phone, StoreName: storeName, BusinessDetails: details, Currency: currency, Locale: locale,
	})
	return id, nil
}

func (f *fakeMerchants) MerchantByPhone(_ context.Context, _ string) (*entity.Merchant, error) {
	return f.byPhone, f.lookupErr
}

func (f *fakeMerchants) SalesStats(_ context.Context, _ string) (entity.SalesStats, error) {
	return f.sales, nil
}

type fakeProducts struct {
	mu      sync.Mutex
	created []entity.Product
	fail    error
}

func (f *fakeProducts) CreateProduct(_ context.Context, merchantID, name string, price float64, stock int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	id := fmt.Sprintf("p-%d", len(f.created)+1)
	f.created = append(f.created, entity.Product{ID: id, MerchantID: merchantID, Name: name, Price: price, Stock: stock})
	return id, nil
}

func (f *fakeProducts) MerchantProducts(_ context.Context, merchantID string) ([]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []*entity.Product
	for i := range f.created {
		if f.created[i].MerchantID == merchantID {
			p := f.created[i]
			products = append(products, &p)
		}
	}
	return products, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (f *fakeNotifier) SendMessage(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.fail
}

type harness struct {
	engine    *chat.ChatEngine
	store     *chat.MemorySessionStore
	merchants *fakeMerchants
	products  *fakeProducts
	notifier  *fakeNotifier
}

const testPhone = "+6511112222"

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:     chat.NewMemorySessionStore(time.Hour),
		merchants: &fakeMerchants{},
		products:  &fakeProducts{},
		notifier:  &fakeNotifier{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewOnboardingWorkflow(h.merchants, h.products, h.notifier, "https://shop.example.com/", log)
	require.NoError(t, chat.ValidateWorkflow(w))
	h.engine = chat.NewChatEngine(w, h.store, lock.NewLocal(), log)
	return h
}

func (h *harness) send(t *testing.T, text string) string {
	t.Helper()
	reply, err := h.engine.ProcessMessage(context.Background(), testPhone, text)
	require.NoError(t, err)
	return reply
}

func (h *harness) session(t *testing.T) *chat.Session {
	t.Helper()
	sess, err := h.store.Get(context.Background(), testPhone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	return sess
}

func TestWorkflow_Closed(t *testing.T) {
	w := NewOnboardingWorkflow(&fakeMerchants{}, &fakeProducts{}, nil, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, chat.ValidateWorkflow(w))
	assert.Len(t, w.Steps(), 17)
	assert.Equal(t, StepStart, w.InitialStep())
}

func TestOnboarding_StoreScenario(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, "1")
	assert.Contains(t, reply, "What's your store name?")
	assert.Equal(t, StepStoreName, h.session(t).CurrentStep)

	reply = h.send(t, "Sarah's Bakery")
	assert.Contains(t, reply, "Tell me about your business")
	assert.Equal(t, StepBusinessDetails, h.session(t).CurrentStep)

	reply = h.send(t, "Fresh cakes")
	assert.True(t, strings.HasPrefix(reply, "❌ Please provide more details"), reply)
	assert.Equal(t, StepBusinessDetails, h.session(t).CurrentStep)

	reply = h.send(t, "Fresh baked goods and cakes")
	assert.Contains(t, reply, "Choose your currency")
	assert.Contains(t, reply, "8️⃣ MMK - Myanmar Kyat")

	reply = h.send(t, "9")
	assert.True(t, strings.HasPrefix(reply, "❌ Please select a number from 1-8"), reply)
	assert.Equal(t, StepCurrencySelection, h.session(t).CurrentStep)

	reply = h.send(t, "1")
	assert.Contains(t, reply, "Store created successfully")

	sess := h.session(t)
	assert.Equal(t, StepAddProductPrompt, sess.CurrentStep)
	assert.Equal(t, entity.SGD, sess.Data.Store.Currency)
	assert.Equal(t, "en-SG", sess.Data.Store.Locale)
	assert.Equal(t, "m-1", sess.Data.Store.MerchantID)
	assert.Len(t, sess.History, 4, "rejected inputs leave no history")

	require.Len(t, h.merchants.created, 1)
	m := h.merchants.created[0]
	assert.Equal(t, testPhone, m.Phone)
	assert.Equal(t, "Sarah's Bakery", m.StoreName)
	assert.Equal(t, "Fresh baked goods and cakes", m.BusinessDetails)
	assert.Equal(t, entity.SGD, m.Currency)
}

func (h *harness) addProduct(t *testing.T, name, price, stock string) string {
	t.Helper()
	h.send(t, name)
	h.send(t, price)
	return h.send(t, stock)
}

func (h *harness) setupStore(t *testing.T) {
	t.Helper()
	for _, msg := range []string{"1", "Sarah's Bakery", "Fresh baked goods and cakes", "1"} {
		h.send(t, msg)
	}
}

func TestOnboarding_TerminalSummary(t *testing.T) {
	h := newHarness(t)
	h.setupStore(t)

	h.send(t, "1")
	reply := h.addProduct(t, "iPhone 15", "1200", "10")
	assert.Contains(t, reply, "Product added successfully")
	assert.Contains(t, reply, "iPhone 15")

	h.send(t, "1")
	h.addProduct(t, "Case", "$20", "100 pcs")

	summary := h.send(t, "4")
	assert.Contains(t, summary, `Your store "Sarah's Bakery" is ready!`)
	assert.Contains(t, summary, "iPhone 15 - SGD 1,200.00")
	assert.Contains(t, summary, "Case - SGD 20.00")
	assert.Contains(t, summary, "https://shop.example.com/checkout/m-1/p-1")
	assert.Contains(t, summary, "https://shop.example.com/checkout/m-1/p-2")

	sess := h.session(t)
	assert.Equal(t, chat.StepEnd, sess.CurrentStep)
	require.Len(t, sess.Data.Products, 2)
	assert.Equal(t, 10, sess.Data.Products[0].Stock)
	assert.Equal(t, 100, sess.Data.Products[1].Stock)

	require.Len(t, h.notifier.sent, 1)
	pushed := h.notifier.sent[0]
	assert.Equal(t, summary, pushed)
	assert.Contains(t, pushed, "https://shop.example.com/store/m-1")
	assert.Contains(t, pushed, "iPhone 15 - SGD 1,200.00")
	assert.Contains(t, pushed, "Case - SGD 20.00")
	assert.Contains(t, pushed, "https://shop.example.com/checkout/m-1/p-1")
	assert.Contains(t, pushed, "https://shop.example.com/checkout/m-1/p-2")

	// The next message starts over
	reply = h.send(t, "hello")
	assert.Contains(t, reply, "Welcome to WhatsGrapp")
}

func TestOnboarding_MutatorFailuresStillAdvance(t *testing.T) {
	h := newHarness(t)
	h.merchants.fail = errors.New("mongo down")
	h.products.fail = errors.New("mongo down")
	h.notifier.fail = errors.New("whatsapp down")

	h.setupStore(t)
	assert.Equal(t, StepAddProductPrompt, h.session(t).CurrentStep)

	h.send(t, "yes")
	h.addProduct(t, "iPhone 15", "1200", "10")
	h.send(t, "another")
	h.addProduct(t, "Case", "20", "5")

	summary := h.send(t, "finish")
	assert.Equal(t, chat.StepEnd, h.session(t).CurrentStep)
	assert.Contains(t, summary, "iPhone 15")
	assert.Contains(t, summary, "Case")

	sess := h.session(t)
	require.Len(t, sess.Data.Products, 2)
	first := Links{AppURL: "https://shop.example.com"}.Checkout("", sess.Data.Products[0].CheckoutKey())
	second := Links{AppURL: "https://shop.example.com"}.Checkout("", sess.Data.Products[1].CheckoutKey())
	assert.NotEqual(t, first, second)
	assert.Contains(t, summary, first)
	assert.Contains(t, summary, second)
}

func TestOnboarding_ProductNameOverwrite(t *testing.T) {
	h := newHarness(t)
	h.setupStore(t)

	h.send(t, "1")
	h.addProduct(t, "First", "10", "1")
	h.send(t, "1")
	h.send(t, "Second")

	sess := h.session(t)
	assert.Equal(t, StepProductPrice, sess.CurrentStep)
	assert.Equal(t, "Second", sess.Data.Answer(StepProductName))
	assert.Equal(t, "Second", sess.Data.Draft.Name)
}

func TestOnboarding_Menus(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, "help")
	assert.Contains(t, reply, "How WhatsGrapp works")
	reply = h.send(t, "ok")
	assert.Contains(t, reply, "Welcome to WhatsGrapp")

	h.merchants.byPhone = &entity.Merchant{ID: "m-9", StoreName: "Tech Gadgets", Currency: entity.THB}
	reply = h.send(t, "2")
	assert.Contains(t, reply, "Tech Gadgets")
	assert.Contains(t, reply, "THB")
	assert.Equal(t, StepStatusCheck, h.session(t).CurrentStep)

	reply = h.send(t, "gibberish")
	assert.Contains(t, reply, "Welcome to WhatsGrapp")
	reply = h.send(t, "gibberish")
	assert.Contains(t, reply, "Welcome to WhatsGrapp", "unknown menu input stays on the menu")
}

func TestOnboarding_StatusListsCatalogAndSales(t *testing.T) {
	h := newHarness(t)
	h.merchants.byPhone = &entity.Merchant{ID: "m-1", StoreName: "Sarah's Bakery", Currency: entity.SGD, Locale: "en-SG"}
	h.merchants.sales = entity.SalesStats{Orders: 3, Revenue: 1540}
	for i := 1; i <= 6; i++ {
		_, err := h.products.CreateProduct(context.Background(), "m-1", fmt.Sprintf("Cake %d", i), 20, i)
		require.NoError(t, err)
	}
	_, err := h.products.CreateProduct(context.Background(), "m-2", "Not mine", 5, 1)
	require.NoError(t, err)

	reply := h.send(t, "status")
	assert.Contains(t, reply, "📦 Products: 6")
	assert.Contains(t, reply, "• Cake 1 - SGD 20.00 (1 in stock)")
	assert.Contains(t, reply, "• Cake 5 - SGD 20.00 (5 in stock)")
	assert.NotContains(t, reply, "Cake 6")
	assert.Contains(t, reply, "and 1 more")
	assert.NotContains(t, reply, "Not mine")
	assert.Contains(t, reply, "🧾 Orders: 3")
	assert.Contains(t, reply, "💵 Sales: SGD 1,540.00")
	assert.Contains(t, reply, "https://shop.example.com/store/m-1")
}

func TestOnboarding_CheckoutAndEmbed(t *testing.T) {
	h := newHarness(t)
	h.setupStore(t)
	h.send(t, "1")
	h.addProduct(t, "Cookies", "5.5", "20")

	reply := h.send(t, "2")
	assert.Contains(t, reply, "https://shop.example.com/checkout/m-1/p-1")
	assert.Equal(t, StepCheckoutLink, h.session(t).CurrentStep)

	reply = h.send(t, "3")
	assert.Contains(t, reply, `merchantId: "m-1"`)
	assert.Contains(t, reply, "https://shop.example.com/embed/whatsgrapp.js")

	reply = h.send(t, "4")
	assert.Contains(t, reply, "Cookies - SGD 5.50")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr string
	}{
		{"29.99", 29.99, ""},
		{"$150", 150, ""},
		{"SGD 1200", 1200, ""},
		{"0", 0, "Please enter a valid price"},
		{"free", 0, "Please enter a valid price"},
		{"1000000", 0, "Price is too high"},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr != "" {
			assert.EqualError(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001)
	}
}

func TestParseStock(t *testing.T) {
	n, err := ParseStock("50 pcs")
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	n, err = ParseStock("0")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParseStock("many")
	assert.EqualError(t, err, "Please enter a valid quantity")

	_, err = ParseStock("1000000")
	assert.EqualError(t, err, "Quantity is too high")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "SGD 1,200.00", FormatPrice(1200, entity.SGD, "en-SG"))
	assert.Contains(t, FormatPrice(20, entity.SGD, "bogus-locale-"), "SGD")
	assert.Contains(t, FormatPrice(99, "XYZ1", "en-SG"), "99.00")
}
