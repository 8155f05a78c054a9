package slot

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// -------- Generation --------
	UpsertIfAbsent(
		ctx context.Context,
		s Slot,
	) (bool, error)

	DeleteFutureFree(
		ctx context.Context,
		providerID uint,
		from time.Time,
	) (int64, error)

	// -------- Queries --------

	// FindByProviderAndRange returns slots overlapping [from, to) ordered by
	// start. An empty statuses list matches every status.
	FindByProviderAndRange(
		ctx context.Context,
		providerID uint,
		from time.Time,
		to time.Time,
		statuses ...Status,
	) ([]Slot, error)

	FindByBooking(
		ctx context.Context,
		bookingID uuid.UUID,
	) ([]Slot, error)

	// -------- State change --------

	// Transition moves a slot only if it is still in expected. A mismatch is
	// a conflict.
	Transition(
		ctx context.Context,
		slotID uuid.UUID,
		expected Status,
		next Status,
		bookingID *uuid.UUID,
	) error

	// -------- Retention --------
	DeleteStale(
		ctx context.Context,
		olderThan time.Time,
		statuses ...Status,
	) (int64, error)
}
