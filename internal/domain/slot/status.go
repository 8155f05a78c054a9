package slot

import "github.com/BruksfildServices01/slot-scheduler/internal/httperr"

// ===============================
// Slot Status
// ===============================

type Status string

const (
	StatusFree     Status = "free"
	StatusReserved Status = "reserved"
	StatusBooked   Status = "booked"
	StatusBlocked  Status = "blocked"
)

func (s Status) Valid() bool {
	switch s {
	case StatusFree, StatusReserved, StatusBooked, StatusBlocked:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", httperr.Configuration("invalid_slot_status", "unknown slot status "+raw)
	}
	return s, nil
}

// ===============================
// Transitions
// ===============================

var transitions = map[Status][]Status{
	StatusFree:     {StatusReserved, StatusBooked, StatusBlocked},
	StatusReserved: {StatusBooked, StatusFree},
	StatusBooked:   {StatusFree},
	StatusBlocked:  {StatusFree},
}

// CanTransition reports whether a slot may move from one status to another.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.InvalidState("invalid_slot_transition")
}

// Linked reports whether a slot in status s carries a booking.
func (s Status) Linked() bool {
	return s == StatusReserved || s == StatusBooked
}

// CleanupStatuses are the statuses retention cleanup may delete.
func CleanupStatuses() []Status {
	return []Status{StatusFree, StatusBlocked}
}
