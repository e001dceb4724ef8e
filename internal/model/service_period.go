package model

// ServicePeriods holds per-period reservation durations in minutes.
// A zero field means the period is unset and its default applies.
type ServicePeriods struct {
	BreakfastMin int
	LunchMin     int
	DinnerMin    int
}
