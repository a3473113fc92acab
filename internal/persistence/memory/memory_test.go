package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

func booking(first string) domain.Appointment {
	return domain.Appointment{
		FirstName:    first,
		LastName:     "Babic",
		PhoneNumber:  "0911234567",
		Date:         "2025-06-02",
		Time:         "09:00",
		ServiceName:  "Manicure",
		ServicePrice: decimal.NewFromInt(20),
	}
}

func TestStorage_ConcurrentCreateSameSlot(t *testing.T) {
	t.Parallel()

	store := Open()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Appointments().Create(ctx, booking("Ana"))
			if err != nil && !errors.Is(err, persistence.ErrDuplicate) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestStorage_AssignsIDsAndTimestamps(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	store := Open().WithClock(func() time.Time { return now })
	ctx := context.Background()

	first, err := store.Appointments().Create(ctx, booking("Ana"))
	require.NoError(t, err)
	second := booking("Iva")
	second.Time = "10:00"
	second, err = store.Appointments().Create(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, now, first.CreatedAt)

	moved := first
	moved.Time = "10:00"
	_, err = store.Appointments().Update(ctx, moved)
	require.ErrorIs(t, err, persistence.ErrDuplicate)

	moved.Time = "11:00"
	moved.CreatedAt = time.Time{}
	updated, err := store.Appointments().Update(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, now, updated.CreatedAt, "created_at survives updates")

	onDate, err := store.Appointments().GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	require.Len(t, onDate, 2)
	assert.Equal(t, "10:00", onDate[0].Time)

	empty, err := store.Appointments().GetByDate(ctx, "2025-06-03")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStorage_EmployeesByPosition(t *testing.T) {
	t.Parallel()

	store := Open()
	ctx := context.Background()

	for i, p := range []domain.Position{domain.PositionManicurist, domain.PositionPedicurist, domain.PositionManicurist} {
		_, err := store.Employees().Create(ctx, domain.Employee{
			FirstName: "Marko", LastName: string(p), Position: p,
			Username: fmt.Sprintf("emp%d", i),
		})
		require.NoError(t, err)
	}

	manicurists, err := store.Employees().GetByPosition(ctx, domain.PositionManicurist)
	require.NoError(t, err)
	assert.Len(t, manicurists, 2)
	assert.Less(t, manicurists[0].ID, manicurists[1].ID)
}
