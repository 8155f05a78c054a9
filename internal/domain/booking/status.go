package booking

import "github.com/BruksfildServices01/slot-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", httperr.Configuration("invalid_booking_status", "unknown booking status "+raw)
	}
	return s, nil
}

// Active bookings hold their time range.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

// ===============================
// Validations
// ===============================

// InitialStatus is confirmed for auto-confirm providers, pending otherwise.
func InitialStatus(autoConfirm bool) Status {
	if autoConfirm {
		return StatusConfirmed
	}
	return StatusPending
}

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.InvalidState(httperr.CodeInvalidState)
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.Active() {
		return httperr.InvalidState(httperr.CodeInvalidState)
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.InvalidState(httperr.CodeInvalidState)
	}
	return nil
}
