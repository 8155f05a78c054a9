package availability

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

const minutesPerDay = 24 * 60

// ParseClock parses "HH:MM" into minutes from midnight. "24:00" is accepted
// as end of day.
func ParseClock(hm string) (int, error) {
	if hm == "24:00" {
		return minutesPerDay, nil
	}

	t, err := time.Parse("15:04", hm)
	if err != nil || len(hm) != 5 {
		return 0, httperr.Configuration("invalid_clock", fmt.Sprintf("malformed HH:MM value %q", hm))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Date is a calendar date with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// At resolves a wall-clock time on d in loc using the zone rules in force
// on that date. minutes may be 1440 for the following midnight.
func (d Date) At(minutes int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, minutes/60, minutes%60, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
