package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	domain "github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func provider(id uint, interval int) availability.ProviderConfig {
	cfg := availability.ProviderConfig{
		ProviderID:      id,
		Timezone:        "UTC",
		IntervalMinutes: interval,
		MaxAdvanceDays:  7,
	}
	for wd := 1; wd <= 5; wd++ {
		cfg.Weekly = append(cfg.Weekly, availability.DayHours{Weekday: wd, Open: "09:00", Close: "12:00"})
	}
	return cfg
}

func newDaily(cat *memory.Catalog, st *memory.SlotStore, bs *memory.BookingStore) *DailyGeneration {
	return NewDailyGeneration(
		cat,
		cat,
		slots.NewGenerateSlots(cat, st, nil, nil, clock),
		booking.NewSlotReconciler(st, bs, nil, nil),
		slots.NewCleanupSlots(st, 30*24*time.Hour, nil, clock),
		nil,
		clock,
	)
}

func TestDailyGeneration_ProviderFailuresAreIsolated(t *testing.T) {
	cat := memory.NewCatalog()
	st := memory.NewSlotStore()

	cat.PutProvider(provider(1, 30))
	cat.PutProvider(provider(2, 30))
	cat.PutProvider(provider(3, 0))
	cat.ConfigErr[2] = errors.New("connection reset")

	report, err := newDaily(cat, st, memory.NewBookingStore()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Providers)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 30, report.Generated)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Results[0].Error)
	assert.NotEmpty(t, report.Results[1].Error)
	assert.NotEmpty(t, report.Results[2].Error)

	for _, s := range st.All() {
		assert.Equal(t, uint(1), s.ProviderID)
	}
}

func TestDailyGeneration_RerunIsIdempotent(t *testing.T) {
	cat := memory.NewCatalog()
	st := memory.NewSlotStore()
	cat.PutProvider(provider(1, 60))
	daily := newDaily(cat, st, memory.NewBookingStore())

	first, err := daily.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, first.Generated)

	second, err := daily.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Len(t, st.All(), 15)
}

func TestDailyGeneration_SweepsActiveBookings(t *testing.T) {
	cat := memory.NewCatalog()
	st := memory.NewSlotStore()
	bs := memory.NewBookingStore()
	cat.PutProvider(provider(1, 30))

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	bs.Put(domain.Booking{
		ID: uuid.New(), ProviderID: 1, ServiceID: 1,
		Start: start, End: start.Add(30 * time.Minute), Status: domain.StatusConfirmed,
	})

	report, err := newDaily(cat, st, bs).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Results[0].Synced)

	got, err := st.FindByProviderAndRange(context.Background(), 1, start, start.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, slot.StatusBooked, got[0].Status)
}

func TestDailyGeneration_StopsWhenCancelled(t *testing.T) {
	cat := memory.NewCatalog()
	cat.PutProvider(provider(1, 30))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDaily(cat, memory.NewSlotStore(), memory.NewBookingStore()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
