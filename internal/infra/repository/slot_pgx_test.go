package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

func newSlotRepo(t *testing.T) (*SlotPgxRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewSlotPgxRepository(mock), mock
}

func TestSlotUpsertIfAbsent(t *testing.T) {
	repo, mock := newSlotRepo(t)
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := slot.Slot{ID: uuid.New(), ProviderID: 7, Start: start, End: start.Add(30 * time.Minute), Status: slot.StatusFree}

	mock.ExpectExec("INSERT INTO slots").
		WithArgs(s.ID, int64(7), start, start.Add(30*time.Minute), "free", (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO slots").
		WithArgs(pgxmock.AnyArg(), int64(7), start, start.Add(30*time.Minute), "free", (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.UpsertIfAbsent(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, inserted)

	s.ID = uuid.New()
	inserted, err = repo.UpsertIfAbsent(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotTransitionCAS(t *testing.T) {
	repo, mock := newSlotRepo(t)
	slotID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectExec("UPDATE slots").
		WithArgs(slotID, "free", "reserved", &bookingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE slots").
		WithArgs(slotID, "free", "reserved", &bookingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Transition(context.Background(), slotID, slot.StatusFree, slot.StatusReserved, &bookingID))

	err := repo.Transition(context.Background(), slotID, slot.StatusFree, slot.StatusReserved, &bookingID)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotTransitionReleaseDropsBooking(t *testing.T) {
	repo, mock := newSlotRepo(t)
	slotID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectExec("UPDATE slots").
		WithArgs(slotID, "booked", "free", (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Transition(context.Background(), slotID, slot.StatusBooked, slot.StatusFree, &bookingID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotTransitionRejectsIllegalMove(t *testing.T) {
	repo, mock := newSlotRepo(t)

	err := repo.Transition(context.Background(), uuid.New(), slot.StatusBooked, slot.StatusReserved, nil)
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotDeleteStale(t *testing.T) {
	repo, mock := newSlotRepo(t)
	cutoff := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM slots").
		WithArgs(cutoff, []string{"free", "blocked"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	n, err := repo.DeleteStale(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = repo.DeleteStale(context.Background(), cutoff, slot.StatusBooked, slot.StatusReserved)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotDeleteFutureFree(t *testing.T) {
	repo, mock := newSlotRepo(t)
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM slots").
		WithArgs(int64(3), from).
		WillReturnResult(pgxmock.NewResult("DELETE", 40))

	n, err := repo.DeleteFutureFree(context.Background(), 3, from)
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotFindByProviderAndRange(t *testing.T) {
	repo, mock := newSlotRepo(t)
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	first := from.Add(9 * time.Hour)
	bookingID := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "provider_id", "start_at", "end_at", "status", "booking_id", "created_at", "updated_at"}).
		AddRow(uuid.New(), int64(7), first, first.Add(30*time.Minute), "free", (*uuid.UUID)(nil), from, from).
		AddRow(uuid.New(), int64(7), first.Add(30*time.Minute), first.Add(time.Hour), "booked", &bookingID, from, from)

	mock.ExpectQuery("SELECT id, provider_id, start_at").
		WithArgs(int64(7), from, to, []string{"free", "booked"}).
		WillReturnRows(rows)

	got, err := repo.FindByProviderAndRange(context.Background(), 7, from, to, slot.StatusFree, slot.StatusBooked)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(7), got[0].ProviderID)
	assert.Equal(t, slot.StatusFree, got[0].Status)
	assert.Nil(t, got[0].BookingID)
	require.NotNil(t, got[1].BookingID)
	assert.Equal(t, bookingID, *got[1].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
