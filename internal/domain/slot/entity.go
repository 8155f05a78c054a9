package slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
)

// Slot is one bookable unit [Start, End) of a provider's calendar.
type Slot struct {
	ID         uuid.UUID  `json:"id"`
	ProviderID uint       `json:"provider_id"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Status     Status     `json:"status"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewFree builds an unsaved free slot for a grid boundary.
func NewFree(providerID uint, b availability.Boundary) Slot {
	return Slot{
		ID:         uuid.New(),
		ProviderID: providerID,
		Start:      b.Start,
		End:        b.End,
		Status:     StatusFree,
	}
}
