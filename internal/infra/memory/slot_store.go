package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// SlotStore keeps slots in process. It enforces the same per-provider
// uniqueness and non-overlap the database constraints do.
type SlotStore struct {
	mu    sync.Mutex
	slots map[uuid.UUID]slot.Slot

	// FailUpsert, when set, is returned by UpsertIfAbsent for matching slots.
	FailUpsert func(s slot.Slot) error
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: map[uuid.UUID]slot.Slot{}}
}

func (m *SlotStore) UpsertIfAbsent(ctx context.Context, s slot.Slot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.FailUpsert != nil {
		if err := m.FailUpsert(s); err != nil {
			return false, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cur := range m.slots {
		if cur.ProviderID != s.ProviderID {
			continue
		}
		if cur.Start.Equal(s.Start) || (cur.Start.Before(s.End) && cur.End.After(s.Start)) {
			return false, nil
		}
	}

	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	m.slots[s.ID] = s
	return true, nil
}

func (m *SlotStore) DeleteFutureFree(ctx context.Context, providerID uint, from time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.slots {
		if s.ProviderID == providerID && s.Status == slot.StatusFree && !s.Start.Before(from) {
			delete(m.slots, id)
			n++
		}
	}
	return n, nil
}

func (m *SlotStore) FindByProviderAndRange(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
	statuses ...slot.Status,
) ([]slot.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []slot.Slot
	for _, s := range m.slots {
		if s.ProviderID != providerID {
			continue
		}
		if !(s.Start.Before(to) && s.End.After(from)) {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, s.Status) {
			continue
		}
		out = append(out, s)
	}
	sortSlots(out)
	return out, nil
}

func (m *SlotStore) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]slot.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []slot.Slot
	for _, s := range m.slots {
		if s.BookingID != nil && *s.BookingID == bookingID {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (m *SlotStore) Transition(
	ctx context.Context,
	slotID uuid.UUID,
	expected slot.Status,
	next slot.Status,
	bookingID *uuid.UUID,
) error {
	if err := slot.CanTransition(expected, next); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[slotID]
	if !ok || s.Status != expected {
		return httperr.Conflict(httperr.CodeConflict)
	}

	s.Status = next
	if next == slot.StatusFree {
		s.BookingID = nil
	} else if bookingID != nil {
		id := *bookingID
		s.BookingID = &id
	}
	s.UpdatedAt = time.Now().UTC()
	m.slots[slotID] = s
	return nil
}

func (m *SlotStore) DeleteStale(ctx context.Context, olderThan time.Time, statuses ...slot.Status) (int64, error) {
	if len(statuses) == 0 {
		statuses = slot.CleanupStatuses()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.slots {
		if s.Status.Linked() || !hasStatus(statuses, s.Status) {
			continue
		}
		if s.End.Before(olderThan) {
			delete(m.slots, id)
			n++
		}
	}
	return n, nil
}

// All returns every stored slot ordered by provider and start.
func (m *SlotStore) All() []slot.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]slot.Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProviderID != out[j].ProviderID {
			return out[i].ProviderID < out[j].ProviderID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func hasStatus(list []slot.Status, s slot.Status) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}

func sortSlots(s []slot.Slot) {
	sort.Slice(s, func(i, j int) bool { return s[i].Start.Before(s[j].Start) })
}
