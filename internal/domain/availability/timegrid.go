package availability

import "time"

// Boundary is one half-open slot [Start, End) in UTC.
type Boundary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// window is the resolved opening span of one local date.
type window struct {
	open  time.Time
	close time.Time
}

// dayWindow resolves the opening span of date. ok is false when the weekday
// has no entry or the entry spans no time.
func dayWindow(cfg ProviderConfig, loc *time.Location, date Date) (window, bool, error) {
	hours, found := cfg.Hours(date.Weekday())
	if !found {
		return window{}, false, nil
	}

	openMin, closeMin, err := hours.span()
	if err != nil {
		return window{}, false, err
	}
	if openMin >= closeMin {
		return window{}, false, nil
	}

	return window{
		open:  date.At(openMin, loc),
		close: date.At(closeMin, loc),
	}, true, nil
}

// GenerateDayBoundaries returns the slot boundaries of one local date.
//
// Steps are taken in elapsed time from the resolved opening instant, so a
// day shortened by a daylight-saving jump yields fewer slots. A trailing
// partial slot is dropped.
func GenerateDayBoundaries(cfg ProviderConfig, date Date) ([]Boundary, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	w, ok, err := dayWindow(cfg, loc, date)
	if err != nil || !ok {
		return nil, err
	}

	step := cfg.Interval()
	if step <= 0 {
		return nil, nil
	}

	var out []Boundary
	for cur := w.open; !cur.Add(step).After(w.close); cur = cur.Add(step) {
		out = append(out, Boundary{
			Start: cur.UTC(),
			End:   cur.Add(step).UTC(),
		})
	}

	return out, nil
}
