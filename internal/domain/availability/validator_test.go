package availability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

var validatorNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return validatorNow }

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(fixedClock)
	cfg := weekdaysConfig("UTC", 30, "09:00", "17:00")

	cases := []struct {
		name     string
		start    time.Time
		duration time.Duration
		want     Reason
	}{
		{"aligned", time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC), 30 * time.Minute, ReasonNone},
		{"ends at close", time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC), time.Hour, ReasonNone},
		{"equal to now", validatorNow, 30 * time.Minute, ReasonPast},
		{"past on closed day", time.Date(2026, 10, 17, 3, 7, 0, 0, time.UTC), 30 * time.Minute, ReasonPast},
		{"saturday", time.Date(2026, 10, 24, 10, 0, 0, 0, time.UTC), 30 * time.Minute, ReasonDayClosed},
		{"before open", time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC), 30 * time.Minute, ReasonOutsideHours},
		{"runs past close", time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC), time.Hour, ReasonOutsideHours},
		{"off grid", time.Date(2026, 10, 19, 9, 10, 0, 0, time.UTC), 30 * time.Minute, ReasonNotAligned},
		{"seconds off grid", time.Date(2026, 10, 19, 9, 30, 1, 0, time.UTC), 30 * time.Minute, ReasonNotAligned},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Check(cfg, tc.start, tc.duration)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidatorNotAlignedForIntervals(t *testing.T) {
	v := NewValidator(fixedClock)

	for _, interval := range []int{5, 15, 30, 60} {
		t.Run(fmt.Sprintf("interval_%d", interval), func(t *testing.T) {
			cfg := weekdaysConfig("UTC", interval, "09:00", "17:00")
			dur := time.Duration(interval) * time.Minute
			open := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

			aligned := open.Add(2 * dur)
			reason, err := v.Check(cfg, aligned, dur)
			require.NoError(t, err)
			assert.Equal(t, ReasonNone, reason)

			off := open.Add(dur + time.Minute)
			err = v.Validate(cfg, off, dur)
			assert.True(t, httperr.IsBusiness(err, string(ReasonNotAligned)))
			assert.True(t, httperr.IsKind(err, httperr.KindValidation))
		})
	}
}

func TestValidatorAlignmentAcrossSpringForward(t *testing.T) {
	v := NewValidator(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) })
	cfg := sundayAllDay("America/New_York")
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2026, 3, 8, 3, 0, 0, 0, ny)
	reason, err := v.Check(cfg, start, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReasonNone, reason)
}

func TestValidatorRespectsProviderZone(t *testing.T) {
	v := NewValidator(fixedClock)
	cfg := weekdaysConfig("America/Sao_Paulo", 30, "09:00", "17:00")

	// 09:00 local in Sao Paulo is 12:00 UTC.
	reason, err := v.Check(cfg, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ReasonNone, reason)

	reason, err = v.Check(cfg, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ReasonOutsideHours, reason)
}

func TestValidatorMalformedConfig(t *testing.T) {
	v := NewValidator(fixedClock)
	cfg := weekdaysConfig("UTC", 30, "09:00", "5pm")

	_, err := v.Check(cfg, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), 30*time.Minute)
	assert.True(t, httperr.IsKind(err, httperr.KindConfiguration))
}
