package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiere/internal/models"
)

// The conditional UPDATE is what keeps a confirm and an expiry sweep from
// both claiming the same hold. Race them and count winners.
func TestConcurrentConfirmVsExpire(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		r := makeHold(t, db, "t1", time.Now().Add(time.Minute))

		var wg sync.WaitGroup
		results := make(chan string, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := db.ConfirmReservation(ctx, r.ID, time.Now()); err == nil {
				results <- models.StatusConfirmed
			}
		}()
		go func() {
			defer wg.Done()
			if err := db.MarkReservationExpired(ctx, r.ID); err == nil {
				results <- models.StatusExpired
			}
		}()
		wg.Wait()
		close(results)

		var winners []string
		for w := range results {
			winners = append(winners, w)
		}
		require.Len(t, winners, 1, "exactly one writer must win")

		got, err := db.GetReservation(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, winners[0], got.Status)
	}
}

func TestConcurrentConfirmSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := makeHold(t, db, "t1", time.Now().Add(time.Minute))

	const workers = 10
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.ConfirmReservation(ctx, r.ID, time.Now()); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "only the first confirm should change the row")
}
