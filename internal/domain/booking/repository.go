package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// -------- Create / conflict --------

	// HasOverlap is the fast-path check against active bookings. It is not
	// the guard; Insert is.
	HasOverlap(
		ctx context.Context,
		providerID uint,
		start time.Time,
		end time.Time,
	) (bool, error)

	// Insert writes b atomically. An overlapping active booking committed by
	// anyone else is a conflict. With a non-empty idempotency key a replay
	// returns the booking stored under that key and replayed=true.
	Insert(
		ctx context.Context,
		b *Booking,
		idempotencyKey string,
	) (stored *Booking, replayed bool, err error)

	// -------- State change --------
	Get(
		ctx context.Context,
		id uuid.UUID,
	) (*Booking, error)

	// UpdateStatus persists b if its stored status is still from.
	UpdateStatus(
		ctx context.Context,
		b *Booking,
		from Status,
	) error

	// -------- Queries --------
	ListActiveInRange(
		ctx context.Context,
		providerID uint,
		from time.Time,
		to time.Time,
	) ([]Booking, error)
}
