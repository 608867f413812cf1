// Package chattest holds the behavioral contract every chat.SessionStore must satisfy.
package chattest

import (
	"WhatsGrapp/bot/chat"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs the store contract against a fresh store.
func RunSessionStoreContract(t *testing.T, store chat.SessionStore) {
	ctx := context.Background()
	prefix := fmt.Sprintf("+65%d", time.Now().UnixNano()%1_000_000)

	t.Run("Get without session", func(t *testing.T) {
		sess, err := store.Get(ctx, prefix+"00")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("Create and Get", func(t *testing.T) {
		phone := prefix + "01"
		created, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, chat.StepID("start"), created.CurrentStep)
		assert.Empty(t, created.History)
		assert.True(t, created.ExpiresAt.After(created.CreatedAt))

		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, created.ID, loaded.ID)
	})

	t.Run("Create expires the previous session", func(t *testing.T) {
		phone := prefix + "02"
		before, err := store.CountActive(ctx)
		require.NoError(t, err)

		first, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)
		second, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, second.ID, loaded.ID)

		after, err := store.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
	})

	t.Run("Update without session", func(t *testing.T) {
		_, err := store.Update(ctx, prefix+"03", chat.Patch{CurrentStep: "store_name"})
		assert.ErrorIs(t, err, chat.ErrSessionNotFound)
	})

	t.Run("Update applies patch", func(t *testing.T) {
		phone := prefix + "04"
		_, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)

		data := chat.NewSessionData()
		data.SetAnswer("start", "1")
		data.Store.Name = "Sarah's Bakery"
		data.Products = append(data.Products, chat.ProductDraft{Reference: "r1", Name: "Cake", Price: 12.5, Stock: 3})

		updated, err := store.Update(ctx, phone, chat.Patch{
			CurrentStep: "store_name",
			Data:        &data,
			History:     []chat.HistoryEntry{{Step: "start", Input: "1", Output: "processed", Timestamp: time.Now()}},
		})
		require.NoError(t, err)
		assert.Equal(t, chat.StepID("store_name"), updated.CurrentStep)

		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, chat.StepID("store_name"), loaded.CurrentStep)
		assert.Equal(t, "1", loaded.Data.Answer("start"))
		assert.Equal(t, "Sarah's Bakery", loaded.Data.Store.Name)
		require.Len(t, loaded.Data.Products, 1)
		assert.Equal(t, "Cake", loaded.Data.Products[0].Name)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, chat.StepID("start"), loaded.History[0].Step)

		// An empty patch keeps step and data
		_, err = store.Update(ctx, phone, chat.Patch{})
		require.NoError(t, err)
		loaded, err = store.Get(ctx, phone)
		require.NoError(t, err)
		assert.Equal(t, chat.StepID("store_name"), loaded.CurrentStep)
		assert.Equal(t, "Sarah's Bakery", loaded.Data.Store.Name)
	})

	t.Run("AppendHistory", func(t *testing.T) {
		phone := prefix + "05"
		_, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)

		require.NoError(t, store.AppendHistory(ctx, phone, chat.HistoryEntry{Step: "start", Input: "a"}))
		require.NoError(t, store.AppendHistory(ctx, phone, chat.HistoryEntry{Step: "start", Input: "b"}))

		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		require.Len(t, loaded.History, 2)
		assert.Equal(t, "a", loaded.History[0].Input)
		assert.Equal(t, "b", loaded.History[1].Input)
		assert.False(t, loaded.History[0].Timestamp.IsZero())

		err = store.AppendHistory(ctx, prefix+"06", chat.HistoryEntry{Step: "start"})
		assert.ErrorIs(t, err, chat.ErrSessionNotFound)
	})

	t.Run("Concurrent appends are not lost", func(t *testing.T) {
		phone := prefix + "07"
		_, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.AppendHistory(ctx, phone, chat.HistoryEntry{Step: "start", Input: fmt.Sprint(i)}))
			}(i)
		}
		wg.Wait()

		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		assert.Len(t, loaded.History, writers)
	})

	t.Run("Expire and cleanup", func(t *testing.T) {
		phone := prefix + "08"
		_, err := store.Create(ctx, phone, "start")
		require.NoError(t, err)

		require.NoError(t, store.Expire(ctx, phone))
		loaded, err := store.Get(ctx, phone)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		removed, err := store.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, int64(1))

		// Cleanup is idempotent
		_, err = store.CleanupExpired(ctx)
		require.NoError(t, err)
	})
}
