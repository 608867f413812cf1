package repository

import (
	"WhatsGrapp/entity"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Memory keeps the catalog in process memory. It backs the chat REPL and tests.
type Memory struct {
	mu        sync.RWMutex
	merchants []*entity.Merchant
	products  []*entity.Product
	orders    map[string]*entity.Order
	messages  []*entity.ChatMessage
	keys      map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		orders: make(map[string]*entity.Order),
		keys:   make(map[string]string),
	}
}

func (m *Memory) CheckApiKey(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	username, ok := m.keys[key]
	if !ok {
		return "", fmt.Errorf("api key not found")
	}
	return username, nil
}

func (m *Memory) GenerateApiKey(username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, name := range m.keys {
		if name == username {
			return key, nil
		}
	}
	key := uuid.NewString()
	m.keys[key] = username
	return key, nil
}

func (m *Memory) SaveMerchant(_ context.Context, merchant *entity.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *merchant
	m.merchants = append(m.merchants, &c)
	return nil
}

func (m *Memory) GetMerchant(_ context.Context, id string) (*entity.Merchant, error) {
	return m.findMerchant(func(merchant *entity.Merchant) bool { return merchant.ID == id }), nil
}

func (m *Memory) GetMerchantByPhone(_ context.Context, phone string) (*entity.Merchant, error) {
	return m.findMerchant(func(merchant *entity.Merchant) bool { return merchant.Phone == phone }), nil
}

// findMerchant returns a copy of the newest matching merchant.
func (m *Memory) findMerchant(match func(*entity.Merchant) bool) *entity.Merchant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.merchants) - 1; i >= 0; i-- {
		if match(m.merchants[i]) {
			c := *m.merchants[i]
			return &c
		}
	}
	return nil
}

func (m *Memory) ListMerchants(_ context.Context, limit, offset int) ([]*entity.Merchant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	newest := slices.Clone(m.merchants)
	slices.Reverse(newest)
	return page(newest, limit, offset), nil
}

func (m *Memory) SaveProduct(_ context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *product
	m.products = append(m.products, &c)
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListProducts(_ context.Context, merchantID string) ([]*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var products []*entity.Product
	for _, p := range m.products {
		if p.MerchantID == merchantID {
			c := *p
			products = append(products, &c)
		}
	}
	return products, nil
}

func (m *Memory) RecentProducts(_ context.Context, limit int) ([]*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var products []*entity.Product
	for i := len(m.products) - 1; i >= 0; i-- {
		c := *m.products[i]
		products = append(products, &c)
	}
	return page(products, limit, 0), nil
}

func (m *Memory) CountProducts(ctx context.Context, merchantID string) (int64, error) {
	products, _ := m.ListProducts(ctx, merchantID)
	return int64(len(products)), nil
}

func (m *Memory) ReserveStock(_ context.Context, productID string, quantity int) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.ID == productID && p.Stock >= quantity {
			p.Stock -= quantity
			c := *p
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ReleaseStock(_ context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.ID == productID {
			p.Stock += quantity
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) SaveOrder(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *order
	m.orders[order.ID] = &c
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	c := *order
	return &c, nil
}

func (m *Memory) SalesStats(_ context.Context, merchantID string) (entity.SalesStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats entity.SalesStats
	for _, o := range m.orders {
		if o.MerchantID == merchantID && o.Status == entity.OrderPaid {
			stats.Orders++
			stats.Revenue += o.Amount
		}
	}
	return stats, nil
}

func (m *Memory) SaveChatMessage(_ context.Context, msg *entity.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *msg
	m.messages = append(m.messages, &c)

	count := 0
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Phone != msg.Phone {
			continue
		}
		count++
		if count > maxMessagesPerPhone {
			m.messages = slices.Delete(m.messages, i, i+1)
		}
	}
	return nil
}

func (m *Memory) GetChatMessages(_ context.Context, phone string, limit, offset int) ([]*entity.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var messages []*entity.ChatMessage
	for i := len(m.messages) - 1; i >= 0; i-- {
		if phone == "" || m.messages[i].Phone == phone {
			c := *m.messages[i]
			messages = append(messages, &c)
		}
	}
	return page(messages, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
