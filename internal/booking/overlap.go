package booking

// Overlaps reports whether the half-open windows [startA, startA+durA) and
// [startB, startB+durB) on the same date intersect.  Starts are minutes
// since midnight.  Windows that merely touch (one ends where the other
// begins) do not overlap.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}
