package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

const bookingColumns = `id, provider_id, client_id, service_id, start_at, end_at, status,
	confirmed_at, cancelled_at, completed_at, created_at, updated_at`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BookingPgxRepository struct {
	db          PgxDB
	lockTimeout time.Duration
}

// NewBookingPgxRepository builds the store. lockTimeout bounds how long an
// insert may wait on a concurrent writer; zero leaves the server default.
func NewBookingPgxRepository(db PgxDB, lockTimeout time.Duration) *BookingPgxRepository {
	return &BookingPgxRepository{db: db, lockTimeout: lockTimeout}
}

// --------------------------------------------------
// Create / conflict
// --------------------------------------------------

func (r *BookingPgxRepository) HasOverlap(
	ctx context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) (bool, error) {

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE provider_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_at < $3 AND end_at > $2
		)`,
		int64(providerID), start.UTC(), end.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, httperr.FromDB(err, "booking_not_found")
	}
	return exists, nil
}

// Insert runs in one transaction. The bookings_no_overlap exclusion
// constraint is the guard against concurrent overlapping inserts.
func (r *BookingPgxRepository) Insert(
	ctx context.Context,
	b *booking.Booking,
	idempotencyKey string,
) (*booking.Booking, bool, error) {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, httperr.FromDB(err, "booking_not_found")
	}
	defer rollback(ctx, tx)

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return nil, false, httperr.FromDB(err, "booking_not_found")
		}
	}

	// --------------------------------------------------
	// Idempotency key
	// --------------------------------------------------
	if idempotencyKey != "" {
		if _, err := tx.Exec(ctx, `
			INSERT INTO booking_idempotency_keys (provider_id, idempotency_key)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			int64(b.ProviderID), idempotencyKey,
		); err != nil {
			return nil, false, httperr.FromDB(err, "booking_not_found")
		}

		var existing *uuid.UUID
		if err := tx.QueryRow(ctx, `
			SELECT booking_id FROM booking_idempotency_keys
			WHERE provider_id = $1 AND idempotency_key = $2
			FOR UPDATE`,
			int64(b.ProviderID), idempotencyKey,
		).Scan(&existing); err != nil {
			return nil, false, httperr.FromDB(err, "booking_not_found")
		}

		if existing != nil {
			stored, err := getBooking(ctx, tx, *existing)
			if err != nil {
				return nil, false, err
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, false, httperr.FromDB(err, "booking_not_found")
			}
			return stored, true, nil
		}
	}

	// --------------------------------------------------
	// Booking row
	// --------------------------------------------------
	if err := tx.QueryRow(ctx, `
		INSERT INTO bookings (id, provider_id, client_id, service_id, start_at, end_at, status, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		b.ID, int64(b.ProviderID), int64(b.ClientID), int64(b.ServiceID),
		b.Start.UTC(), b.End.UTC(), string(b.Status), b.ConfirmedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, false, httperr.FromDB(err, "booking_not_found")
	}

	if idempotencyKey != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE booking_idempotency_keys SET booking_id = $3
			WHERE provider_id = $1 AND idempotency_key = $2`,
			int64(b.ProviderID), idempotencyKey, b.ID,
		); err != nil {
			return nil, false, httperr.FromDB(err, "booking_not_found")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, httperr.FromDB(err, "booking_not_found")
	}

	return b, false, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *BookingPgxRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*booking.Booking, error) {
	return getBooking(ctx, r.db, id)
}

func (r *BookingPgxRepository) UpdateStatus(
	ctx context.Context,
	b *booking.Booking,
	from booking.Status,
) error {

	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET status = $3, confirmed_at = $4, cancelled_at = $5, completed_at = $6, updated_at = now()
		WHERE id = $1 AND status = $2`,
		b.ID, string(from), string(b.Status), b.ConfirmedAt, b.CancelledAt, b.CompletedAt,
	)
	if err != nil {
		return httperr.FromDB(err, "booking_not_found")
	}
	if tag.RowsAffected() == 0 {
		return httperr.InvalidState(httperr.CodeInvalidState)
	}
	return nil
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *BookingPgxRepository) ListActiveInRange(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
) ([]booking.Booking, error) {

	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_at < $3 AND end_at > $2
		ORDER BY start_at ASC`,
		int64(providerID), from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, httperr.FromDB(err, "booking_not_found")
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromDB(err, "booking_not_found")
	}
	return out, nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func getBooking(ctx context.Context, q rowQuerier, id uuid.UUID) (*booking.Booking, error) {
	row := q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		b                               booking.Booking
		providerID, clientID, serviceID int64
		status                          string
	)
	if err := row.Scan(
		&b.ID,
		&providerID,
		&clientID,
		&serviceID,
		&b.Start,
		&b.End,
		&status,
		&b.ConfirmedAt,
		&b.CancelledAt,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, httperr.FromDB(err, "booking_not_found")
	}

	parsed, err := booking.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	b.ProviderID = uint(providerID)
	b.ClientID = uint(clientID)
	b.ServiceID = uint(serviceID)
	b.Status = parsed
	return &b, nil
}

// Compile-time check
var _ booking.Repository = (*BookingPgxRepository)(nil)
