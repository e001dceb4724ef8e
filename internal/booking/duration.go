package booking

import "github.com/iliyamo/table-reservation/internal/model"

// DefaultDurationMin applies when no service-period configuration exists.
const DefaultDurationMin = 90

const (
	defaultBreakfastMin = 45
	defaultLunchMin     = 60
	defaultDinnerMin    = 90

	breakfastStartHour = 6
	lunchStartHour     = 11
	dinnerStartHour    = 15
)

// ResolveDuration derives a reservation's length from its start time.
// Hours in [6,11) are breakfast, [11,15) lunch and everything else dinner;
// a boundary hour belongs to the later period.  With no configuration the
// result is DefaultDurationMin.  An unparsable time falls into dinner.
func ResolveDuration(clock string, periods *model.ServicePeriods) int {
	if periods == nil {
		return DefaultDurationMin
	}
	hour := -1
	if m, err := parseClock(clock); err == nil {
		hour = m / 60
	}
	switch {
	case hour >= breakfastStartHour && hour < lunchStartHour:
		return orDefault(periods.BreakfastMin, defaultBreakfastMin)
	case hour >= lunchStartHour && hour < dinnerStartHour:
		return orDefault(periods.LunchMin, defaultLunchMin)
	default:
		return orDefault(periods.DinnerMin, defaultDinnerMin)
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
