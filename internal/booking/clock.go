package booking

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseClock converts "HH:MM" (or "HH:MM:SS", as MySQL TIME columns render)
// into minutes since midnight.
func parseClock(s string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, s)
}

// validateWindow checks a requested booking window and returns its start in
// minutes since midnight.
func validateWindow(date, clock string, durationMin int) (int, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	start, err := parseClock(clock)
	if err != nil {
		return 0, err
	}
	if durationMin <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, durationMin)
	}
	return start, nil
}
