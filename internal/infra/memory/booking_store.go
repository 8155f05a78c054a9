package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// BookingStore is the in-process booking repository. Insert checks for an
// overlapping active booking and writes under one lock, which mirrors the
// exclusion constraint.
type BookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]booking.Booking
	keys     map[string]uuid.UUID

	// InsertDelay widens the race window between the fast-path check and
	// the guarded write.
	InsertDelay time.Duration
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: map[uuid.UUID]booking.Booking{},
		keys:     map[string]uuid.UUID{},
	}
}

func (m *BookingStore) HasOverlap(ctx context.Context, providerID uint, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.overlapLocked(providerID, start, end), nil
}

func (m *BookingStore) overlapLocked(providerID uint, start, end time.Time) bool {
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.Status.Active() && b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (m *BookingStore) Insert(
	ctx context.Context,
	b *booking.Booking,
	idempotencyKey string,
) (*booking.Booking, bool, error) {

	if m.InsertDelay > 0 {
		select {
		case <-time.After(m.InsertDelay):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idempotencyKey != "" {
		if id, ok := m.keys[idempotencyKey]; ok {
			stored := m.bookings[id]
			return &stored, true, nil
		}
	}

	if b.Status.Active() && m.overlapLocked(b.ProviderID, b.Start, b.End) {
		return nil, false, httperr.Conflict(httperr.CodeConflict)
	}

	now := time.Now().UTC()
	stored := *b
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.bookings[stored.ID] = stored
	if idempotencyKey != "" {
		m.keys[idempotencyKey] = stored.ID
	}

	out := stored
	return &out, false, nil
}

func (m *BookingStore) Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, httperr.NotFound("booking_not_found")
	}
	return &b, nil
}

func (m *BookingStore) UpdateStatus(ctx context.Context, b *booking.Booking, from booking.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.bookings[b.ID]
	if !ok {
		return httperr.NotFound("booking_not_found")
	}
	if cur.Status != from {
		return httperr.InvalidState(httperr.CodeInvalidState)
	}

	b.UpdatedAt = time.Now().UTC()
	m.bookings[b.ID] = *b
	return nil
}

func (m *BookingStore) ListActiveInRange(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
) ([]booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []booking.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.Status.Active() && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Put stores b as is, bypassing the overlap guard.
func (m *BookingStore) Put(b booking.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}
