package repository

import (
	"WhatsGrapp/entity"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveMerchant(ctx, &entity.Merchant{ID: "m-1", Phone: "+65"}))
	require.NoError(t, m.SaveMerchant(ctx, &entity.Merchant{ID: "m-2", Phone: "+65"}))

	merchant, err := m.GetMerchantByPhone(ctx, "+65")
	require.NoError(t, err)
	assert.Equal(t, "m-2", merchant.ID)

	missing, err := m.GetMerchant(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, _ := m.ListMerchants(ctx, 1, 1)
	require.Len(t, list, 1)
	assert.Equal(t, "m-1", list[0].ID)

	require.NoError(t, m.SaveProduct(ctx, &entity.Product{ID: "p-1", MerchantID: "m-1", Stock: 2}))
	count, _ := m.CountProducts(ctx, "m-1")
	assert.EqualValues(t, 1, count)

	p, err := m.ReserveStock(ctx, "p-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	_, err = m.ReserveStock(ctx, "p-1", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.ReleaseStock(ctx, "p-1", 2))
	p, err = m.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
	assert.ErrorIs(t, m.ReleaseStock(ctx, "nope", 1), ErrNotFound)
}

func TestMemorySalesStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveOrder(ctx, &entity.Order{ID: "o-1", MerchantID: "m-1", Amount: 10.5, Status: entity.OrderPaid}))
	require.NoError(t, m.SaveOrder(ctx, &entity.Order{ID: "o-2", MerchantID: "m-1", Amount: 4.5, Status: entity.OrderPaid}))
	require.NoError(t, m.SaveOrder(ctx, &entity.Order{ID: "o-3", MerchantID: "m-1", Amount: 99, Status: entity.OrderPending}))
	require.NoError(t, m.SaveOrder(ctx, &entity.Order{ID: "o-4", MerchantID: "m-2", Amount: 7, Status: entity.OrderPaid}))

	stats, err := m.SalesStats(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SalesStats{Orders: 2, Revenue: 15}, stats)

	stats, err = m.SalesStats(ctx, "m-3")
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestMemoryMessagesTrimmed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < maxMessagesPerPhone+5; i++ {
		require.NoError(t, m.SaveChatMessage(ctx, &entity.ChatMessage{Phone: "+1", Text: fmt.Sprint(i)}))
	}
	require.NoError(t, m.SaveChatMessage(ctx, &entity.ChatMessage{Phone: "+2", Text: "other"}))

	msgs, _ := m.GetChatMessages(ctx, "+1", 0, 0)
	require.Len(t, msgs, maxMessagesPerPhone)
	assert.Equal(t, fmt.Sprint(maxMessagesPerPhone+4), msgs[0].Text)

	all, _ := m.GetChatMessages(ctx, "", 2, 0)
	require.Len(t, all, 2)
	assert.Equal(t, "other", all[0].Text)
}

func TestMemoryApiKeys(t *testing.T) {
	m := NewMemory()
	key, err := m.GenerateApiKey("admin")
	require.NoError(t, err)

	again, _ := m.GenerateApiKey("admin")
	assert.Equal(t, key, again)

	name, err := m.CheckApiKey(key)
	require.NoError(t, err)
	assert.Equal(t, "admin", name)

	_, err = m.CheckApiKey("bad")
	assert.Error(t, err)
}
