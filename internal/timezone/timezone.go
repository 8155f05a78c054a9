package timezone

import (
	"time"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// Load resolves an IANA zone name. Unknown or empty names are a
// configuration error, never silently replaced.
func Load(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, httperr.Configuration("invalid_timezone", "timezone is empty")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, httperr.Configuration("invalid_timezone", "unknown timezone "+tz)
	}
	return loc, nil
}
