package repository

import (
	"context"
	"testing"
	"time"

	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fixed := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = time.Now }()

	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		r := redisSample("", "2025-07-10", "19:00")
		require.NoError(t, store.Create(ctx, &r))

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, fixed, r.CreatedAt)
		assert.Equal(t, fixed, r.UpdatedAt)
	})

	t.Run("ListReturnsCopy", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		list[0].Name = "mutated"

		again, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again[0].Name)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		r := redisSample("missing", "2025-07-10", "19:00")
		assert.ErrorIs(t, store.Update(ctx, &r), domain.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		assert.ErrorIs(t, store.Delete(ctx, "missing"), domain.ErrNotFound)
	})

	t.Run("ReplaceAllCopiesInput", func(t *testing.T) {
		input := []models.Reservation{redisSample("rep-1", "2025-08-01", "10:00")}
		require.NoError(t, store.ReplaceAll(ctx, input))

		input[0].Name = "mutated"

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Marko", list[0].Name)
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx))
		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
