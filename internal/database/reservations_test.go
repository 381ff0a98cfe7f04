package database

import (
	"context"
	"testing"

	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleReservation(id, date, timeStr string) models.Reservation {
	return models.Reservation{
		ID:        id,
		Name:      "Marko",
		Phone:     "0641234567",
		Date:      date,
		Time:      timeStr,
		Guests:    4,
		Type:      models.TypeStandard,
		CreatedBy: "Ana",
	}
}

func TestReservationCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		r := sampleReservation("", "2025-07-01", "19:30")
		require.NoError(t, db.Create(ctx, &r))

		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
		assert.Equal(t, r.CreatedAt, r.UpdatedAt)

		got, err := db.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Marko", got.Name)
		assert.Equal(t, 0, got.TableNumber)
		assert.Nil(t, got.Birthday)
	})

	t.Run("BirthdayFieldsPersisted", func(t *testing.T) {
		r := sampleReservation("bday-1", "2025-08-01", "14:00")
		r.Type = models.TypeBirthday
		r.Birthday = &models.BirthdayDetails{AdultsCount: 4, ChildrenCount: 2, Menu: models.BirthdayMenuPremium}
		r.Guests = 6
		r.TableNumber = 9
		r.Notes = "torta u 16h"
		require.NoError(t, db.Create(ctx, &r))

		got, err := db.Get(ctx, "bday-1")
		require.NoError(t, err)
		require.NotNil(t, got.Birthday)
		assert.Equal(t, 4, got.Birthday.AdultsCount)
		assert.Equal(t, 2, got.Birthday.ChildrenCount)
		assert.Equal(t, models.BirthdayMenuPremium, got.Birthday.Menu)
		assert.Equal(t, 9, got.TableNumber)
		assert.Equal(t, "torta u 16h", got.Notes)
	})

	t.Run("UpdatePreservesCreatedAt", func(t *testing.T) {
		r := sampleReservation("upd-1", "2025-07-02", "18:00")
		require.NoError(t, db.Create(ctx, &r))
		created := r.CreatedAt

		r.Name = "Jovan"
		r.Guests = 6
		require.NoError(t, db.Update(ctx, &r))

		got, err := db.Get(ctx, "upd-1")
		require.NoError(t, err)
		assert.Equal(t, "Jovan", got.Name)
		assert.Equal(t, 6, got.Guests)
		assert.WithinDuration(t, created, got.CreatedAt, 0)
	})

	t.Run("UpdateMissingID", func(t *testing.T) {
		r := sampleReservation("no-such-id", "2025-07-02", "18:00")
		err := db.Update(ctx, &r)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		r := sampleReservation("del-1", "2025-07-03", "12:00")
		require.NoError(t, db.Create(ctx, &r))

		require.NoError(t, db.Delete(ctx, "del-1"))

		_, err := db.Get(ctx, "del-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, db.Delete(ctx, "del-1"), domain.ErrNotFound)
	})
}

func TestListOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	inserts := []models.Reservation{
		sampleReservation("c", "2025-07-02", "10:00"),
		sampleReservation("a", "2025-07-01", "20:00"),
		sampleReservation("b", "2025-07-01", "09:00"),
	}
	for i := range inserts {
		require.NoError(t, db.Create(ctx, &inserts[i]))
	}

	list, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "c", list[2].ID)
}

func TestReplaceAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	old := sampleReservation("old-1", "2025-07-01", "19:00")
	require.NoError(t, db.Create(ctx, &old))

	replacement := []models.Reservation{
		sampleReservation("new-1", "2025-08-01", "12:00"),
		sampleReservation("", "2025-08-02", "13:00"),
	}
	require.NoError(t, db.ReplaceAll(ctx, replacement))

	list, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new-1", list[0].ID)
	// Отсутствующий id назначается при вставке
	assert.NotEmpty(t, list[1].ID)

	_, err = db.Get(ctx, "old-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("EmptyListClears", func(t *testing.T) {
		require.NoError(t, db.ReplaceAll(ctx, nil))
		list, err := db.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestReset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := sampleReservation("r-1", "2025-07-01", "19:00")
	require.NoError(t, db.Create(ctx, &r))

	require.NoError(t, db.Reset(ctx))

	list, err := db.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
