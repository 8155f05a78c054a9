package availability

import (
	"time"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// Reason is why a requested start was rejected.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonPast         Reason = "PAST"
	ReasonDayClosed    Reason = "DAY_CLOSED"
	ReasonOutsideHours Reason = "OUTSIDE_HOURS"
	ReasonNotAligned   Reason = "NOT_ALIGNED"
)

// Validator decides whether a start instant is bookable under a config
// snapshot. It never touches storage.
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Check runs the rules in order and stops at the first failure. The error
// is only set for a malformed config.
func (v *Validator) Check(
	cfg ProviderConfig,
	start time.Time,
	duration time.Duration,
) (Reason, error) {

	if !start.After(v.now()) {
		return ReasonPast, nil
	}

	if duration <= 0 {
		return ReasonNone, httperr.Configuration("invalid_duration", "duration must be positive")
	}

	loc, err := cfg.Location()
	if err != nil {
		return ReasonNone, err
	}

	local := start.In(loc)
	w, ok, err := dayWindow(cfg, loc, DateOf(local))
	if err != nil {
		return ReasonNone, err
	}
	if !ok {
		return ReasonDayClosed, nil
	}

	end := start.Add(duration)
	if start.Before(w.open) || end.After(w.close) {
		return ReasonOutsideHours, nil
	}

	step := cfg.Interval()
	if step <= 0 {
		return ReasonNone, httperr.Configuration("invalid_interval", "interval must be positive")
	}
	if start.Sub(w.open)%step != 0 {
		return ReasonNotAligned, nil
	}

	return ReasonNone, nil
}

// Validate is Check with the reason turned into a validation error.
func (v *Validator) Validate(
	cfg ProviderConfig,
	start time.Time,
	duration time.Duration,
) error {
	reason, err := v.Check(cfg, start, duration)
	if err != nil {
		return err
	}
	if reason != ReasonNone {
		return httperr.Validation(string(reason))
	}
	return nil
}
