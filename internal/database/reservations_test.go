package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiere/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeHold(t *testing.T, db *DB, tableID string, expiry time.Time) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		ID:              uuid.New().String(),
		HolderPhone:     "+79990001122",
		HolderName:      "Anna",
		Date:            "2026-09-01",
		Time:            "18:00",
		DurationMinutes: 90,
		Guests:          2,
		TableID:         tableID,
		TableNumber:     1,
		TableCapacity:   2,
		Status:          models.StatusHeld,
		LockExpiry:      &expiry,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, db.InsertReservation(context.Background(), r))
	return r
}

func TestConfirmReservation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(5*time.Minute))

	require.NoError(t, db.ConfirmReservation(ctx, r.ID, time.Now()))

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Nil(t, got.LockExpiry)
	require.NotNil(t, got.ConfirmedAt)
}

func TestConfirmReservationOnlyFromHeld(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(5*time.Minute))

	require.NoError(t, db.MarkReservationExpired(ctx, r.ID))

	err := db.ConfirmReservation(ctx, r.ID, time.Now())
	assert.ErrorIs(t, err, ErrNoChange)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)
}

func TestMarkReservationExpiredIsIdempotentLoser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(-time.Minute))

	require.NoError(t, db.MarkReservationExpired(ctx, r.ID))
	assert.ErrorIs(t, db.MarkReservationExpired(ctx, r.ID), ErrNoChange)
}

func TestCancelReservationChecksFromStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(5*time.Minute))

	assert.ErrorIs(t, db.CancelReservation(ctx, r.ID, models.StatusConfirmed), ErrNoChange)
	require.NoError(t, db.CancelReservation(ctx, r.ID, models.StatusHeld))

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestFindLiveHold(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()
	r := makeHold(t, db, "t1", now.Add(5*time.Minute))

	found, err := db.FindLiveHold(ctx, r.HolderPhone, r.TableID, r.Date, r.Time, now)
	require.NoError(t, err)
	assert.Equal(t, r.ID, found.ID)

	// Different slot does not match
	_, err = db.FindLiveHold(ctx, r.HolderPhone, r.TableID, r.Date, "19:00", now)
	assert.ErrorIs(t, err, ErrNotFound)

	// Expired hold does not match
	_, err = db.FindLiveHold(ctx, r.HolderPhone, r.TableID, r.Date, r.Time, now.Add(10*time.Minute))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindExpiredHeld(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	stale := makeHold(t, db, "t1", now.Add(-time.Minute))
	live := makeHold(t, db, "t2", now.Add(5*time.Minute))

	ids, err := db.FindExpiredHeld(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids, stale.ID)
	assert.NotContains(t, ids, live.ID)
}

func TestActiveReservationsOnTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	held := makeHold(t, db, "t1", now.Add(5*time.Minute))
	confirmed := makeHold(t, db, "t1", now.Add(5*time.Minute))
	require.NoError(t, db.ConfirmReservation(ctx, confirmed.ID, now))
	cancelled := makeHold(t, db, "t1", now.Add(5*time.Minute))
	require.NoError(t, db.CancelReservation(ctx, cancelled.ID, models.StatusHeld))
	makeHold(t, db, "t2", now.Add(5*time.Minute))

	active, err := db.ActiveReservationsOnTable(ctx, "t1", held.Date)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, r := range active {
		assert.NotEqual(t, cancelled.ID, r.ID)
		assert.Equal(t, "t1", r.TableID)
	}
}

func TestLegacyEmailHolderNormalized(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := &models.Reservation{
		ID:          uuid.New().String(),
		HolderEmail: "old@example.com",
		HolderName:  "Boris",
		Date:        "2026-09-01",
		Time:        "12:00",
		Guests:      4,
		Status:      models.StatusConfirmed,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.InsertReservation(ctx, r))

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", got.HolderPhone)

	byHolder, err := db.ReservationsByHolder(ctx, "", "old@example.com")
	require.NoError(t, err)
	require.Len(t, byHolder, 1)
	assert.Equal(t, r.ID, byHolder[0].ID)
}

func TestForceReservationStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(-time.Minute))

	require.NoError(t, db.ForceReservationStatus(ctx, r.ID, models.StatusConfirmed, time.Now()))
	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.NotNil(t, got.ConfirmedAt)

	assert.ErrorIs(t, db.ForceReservationStatus(ctx, "missing", models.StatusCancelled, time.Now()), ErrNotFound)
}
