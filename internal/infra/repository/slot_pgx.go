package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

type SlotPgxRepository struct {
	db PgxDB
}

func NewSlotPgxRepository(db PgxDB) *SlotPgxRepository {
	return &SlotPgxRepository{db: db}
}

const slotColumns = `id, provider_id, start_at, end_at, status, booking_id, created_at, updated_at`

// --------------------------------------------------
// Generation
// --------------------------------------------------

// UpsertIfAbsent relies on the (provider_id, start_at) unique key and the
// overlap exclusion constraint; either one turns the insert into a no-op.
func (r *SlotPgxRepository) UpsertIfAbsent(
	ctx context.Context,
	s slot.Slot,
) (bool, error) {

	tag, err := r.db.Exec(ctx, `
		INSERT INTO slots (id, provider_id, start_at, end_at, status, booking_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`,
		s.ID, int64(s.ProviderID), s.Start.UTC(), s.End.UTC(), string(s.Status), s.BookingID,
	)
	if err != nil {
		return false, httperr.FromDB(err, "slot_not_found")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotPgxRepository) DeleteFutureFree(
	ctx context.Context,
	providerID uint,
	from time.Time,
) (int64, error) {

	tag, err := r.db.Exec(ctx, `
		DELETE FROM slots
		WHERE provider_id = $1 AND start_at >= $2 AND status = 'free' AND booking_id IS NULL`,
		int64(providerID), from.UTC(),
	)
	if err != nil {
		return 0, httperr.FromDB(err, "slot_not_found")
	}
	return tag.RowsAffected(), nil
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *SlotPgxRepository) FindByProviderAndRange(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
	statuses ...slot.Status,
) ([]slot.Slot, error) {

	var (
		rows pgx.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = r.db.Query(ctx, `
			SELECT `+slotColumns+`
			FROM slots
			WHERE provider_id = $1 AND start_at < $3 AND end_at > $2
			ORDER BY start_at ASC`,
			int64(providerID), from.UTC(), to.UTC(),
		)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+slotColumns+`
			FROM slots
			WHERE provider_id = $1 AND start_at < $3 AND end_at > $2 AND status = ANY($4)
			ORDER BY start_at ASC`,
			int64(providerID), from.UTC(), to.UTC(), statusStrings(statuses),
		)
	}
	if err != nil {
		return nil, httperr.FromDB(err, "slot_not_found")
	}
	return scanSlots(rows)
}

func (r *SlotPgxRepository) FindByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]slot.Slot, error) {

	rows, err := r.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE booking_id = $1
		ORDER BY start_at ASC`,
		bookingID,
	)
	if err != nil {
		return nil, httperr.FromDB(err, "slot_not_found")
	}
	return scanSlots(rows)
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *SlotPgxRepository) Transition(
	ctx context.Context,
	slotID uuid.UUID,
	expected slot.Status,
	next slot.Status,
	bookingID *uuid.UUID,
) error {

	if err := slot.CanTransition(expected, next); err != nil {
		return err
	}

	// Releasing to free always drops the link.
	if next == slot.StatusFree {
		bookingID = nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE slots
		SET status = $3, booking_id = $4, updated_at = now()
		WHERE id = $1 AND status = $2`,
		slotID, string(expected), string(next), bookingID,
	)
	if err != nil {
		return httperr.FromDB(err, "slot_not_found")
	}
	if tag.RowsAffected() == 0 {
		return httperr.Conflict(httperr.CodeConflict)
	}
	return nil
}

// --------------------------------------------------
// Retention
// --------------------------------------------------

func (r *SlotPgxRepository) DeleteStale(
	ctx context.Context,
	olderThan time.Time,
	statuses ...slot.Status,
) (int64, error) {

	if len(statuses) == 0 {
		statuses = slot.CleanupStatuses()
	}

	// Linked statuses are never eligible whatever the caller passes.
	eligible := make([]slot.Status, 0, len(statuses))
	for _, s := range statuses {
		if !s.Linked() {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM slots
		WHERE end_at < $1 AND status = ANY($2) AND booking_id IS NULL`,
		olderThan.UTC(), statusStrings(eligible),
	)
	if err != nil {
		return 0, httperr.FromDB(err, "slot_not_found")
	}
	return tag.RowsAffected(), nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func statusStrings(statuses []slot.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanSlots(rows pgx.Rows) ([]slot.Slot, error) {
	defer rows.Close()

	var out []slot.Slot
	for rows.Next() {
		var (
			s          slot.Slot
			providerID int64
			status     string
		)
		if err := rows.Scan(
			&s.ID,
			&providerID,
			&s.Start,
			&s.End,
			&status,
			&s.BookingID,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, httperr.Storage(err)
		}

		parsed, err := slot.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		s.ProviderID = uint(providerID)
		s.Status = parsed
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromDB(err, "slot_not_found")
	}
	return out, nil
}

// Compile-time check
var _ slot.Store = (*SlotPgxRepository)(nil)
