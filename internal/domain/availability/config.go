package availability

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/timezone"
)

const (
	MinIntervalMinutes    = 5
	MaxIntervalMinutes    = 120
	MinAdvanceDays        = 1
	MaxAdvanceDays        = 365
	DefaultMaxAdvanceDays = 60
)

// DayHours is the opening window of one weekday, in provider local time.
type DayHours struct {
	Weekday int    `json:"weekday"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

// ProviderConfig is the read-only snapshot of a provider's scheduling
// settings. Absence of a weekday in Weekly means closed.
type ProviderConfig struct {
	ProviderID      uint       `json:"provider_id"`
	Timezone        string     `json:"timezone"`
	IntervalMinutes int        `json:"interval_minutes"`
	MaxAdvanceDays  int        `json:"max_advance_days"`
	AutoConfirm     bool       `json:"auto_confirm"`
	Weekly          []DayHours `json:"weekly"`
}

func (c ProviderConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Horizon returns MaxAdvanceDays, or the default when unset.
func (c ProviderConfig) Horizon() int {
	if c.MaxAdvanceDays <= 0 {
		return DefaultMaxAdvanceDays
	}
	return c.MaxAdvanceDays
}

func (c ProviderConfig) Location() (*time.Location, error) {
	return timezone.Load(c.Timezone)
}

// Hours returns the entry for weekday, if any.
func (c ProviderConfig) Hours(weekday time.Weekday) (DayHours, bool) {
	for _, h := range c.Weekly {
		if h.Weekday == int(weekday) {
			return h, true
		}
	}
	return DayHours{}, false
}

// Validate checks every field a generation run depends on.
func (c ProviderConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.IntervalMinutes < MinIntervalMinutes || c.IntervalMinutes > MaxIntervalMinutes {
		return httperr.Configuration(
			"invalid_interval",
			fmt.Sprintf("interval must be between %d and %d minutes, got %d", MinIntervalMinutes, MaxIntervalMinutes, c.IntervalMinutes),
		)
	}

	if c.MaxAdvanceDays != 0 && (c.MaxAdvanceDays < MinAdvanceDays || c.MaxAdvanceDays > MaxAdvanceDays) {
		return httperr.Configuration(
			"invalid_max_advance_days",
			fmt.Sprintf("max advance days must be between %d and %d, got %d", MinAdvanceDays, MaxAdvanceDays, c.MaxAdvanceDays),
		)
	}

	seen := make(map[int]bool, len(c.Weekly))
	for _, h := range c.Weekly {
		if h.Weekday < 0 || h.Weekday > 6 {
			return httperr.Configuration("invalid_weekday", fmt.Sprintf("weekday %d out of range", h.Weekday))
		}
		if seen[h.Weekday] {
			return httperr.Configuration("duplicate_weekday", fmt.Sprintf("weekday %d configured twice", h.Weekday))
		}
		seen[h.Weekday] = true

		if _, _, err := h.span(); err != nil {
			return err
		}
	}

	return nil
}

// span returns open and close as minutes from local midnight.
func (h DayHours) span() (int, int, error) {
	open, err := ParseClock(h.Open)
	if err != nil {
		return 0, 0, err
	}
	closing, err := ParseClock(h.Close)
	if err != nil {
		return 0, 0, err
	}
	return open, closing, nil
}
