package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the authoritative record of taken time.
type Booking struct {
	ID          uuid.UUID  `json:"id"`
	ProviderID  uint       `json:"provider_id"`
	ClientID    uint       `json:"client_id"`
	ServiceID   uint       `json:"service_id"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Status      Status     `json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overlaps is the half-open interval test against [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// ===============================
// Domain Actions
// ===============================

func Confirm(b *Booking, now time.Time) error {
	if err := CanConfirm(b.Status); err != nil {
		return err
	}

	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	return nil
}

func Cancel(b *Booking, now time.Time) error {
	if err := CanCancel(b.Status); err != nil {
		return err
	}

	b.Status = StatusCancelled
	b.CancelledAt = &now
	return nil
}

func Complete(b *Booking, now time.Time) error {
	if err := CanComplete(b.Status); err != nil {
		return err
	}

	b.Status = StatusCompleted
	b.CompletedAt = &now
	return nil
}
