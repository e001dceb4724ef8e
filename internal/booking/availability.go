package booking

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/table-reservation/internal/model"
)

// AvailabilityQuery asks whether one table is free for a window.
type AvailabilityQuery struct {
	TenantID    uint64
	TableID     uint64
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	DurationMin int
	// ExcludeID leaves one reservation out of the check, typically the one
	// being (re)assigned.  Zero excludes nothing.
	ExcludeID uint64
}

// IsAvailable reports whether the table has no confirmed or seated
// reservation on the date whose window overlaps the requested one.
// Pending, completed, cancelled and no-show reservations never block.
func (e *Engine) IsAvailable(ctx context.Context, q AvailabilityQuery) (bool, error) {
	start, err := validateWindow(q.Date, q.Time, q.DurationMin)
	if err != nil {
		return false, err
	}
	free, err := isFree(ctx, e.store, q.TenantID, q.TableID, q.Date, start, q.DurationMin, q.ExcludeID)
	return free, storageErr("availability", err)
}

// AvailableTables lists the tables, in ascending number, that can seat
// partySize and are free for the window.  It backs the staff candidate
// list and the floor-plan filter.  A zero durationMin is resolved from
// the service periods; a negative one is rejected.
func (e *Engine) AvailableTables(ctx context.Context, tenantID uint64, date, clock string, durationMin, partySize int) ([]model.Table, error) {
	if durationMin == 0 {
		durationMin = ResolveDuration(clock, e.periods)
	}
	start, err := validateWindow(date, clock, durationMin)
	if err != nil {
		return nil, err
	}
	if partySize <= 0 {
		return nil, errPartySize(partySize)
	}
	return e.freeTables(ctx, tenantID, date, start, durationMin, partySize, 0)
}

// isFree loads the table's blocking reservations for the date through r and
// applies the overlap check.
func isFree(ctx context.Context, r Reader, tenantID, tableID uint64, date string, start, duration int, excludeID uint64) (bool, error) {
	existing, err := r.ListBlockingReservations(ctx, tenantID, tableID, date, excludeID)
	if err != nil {
		return false, err
	}
	for _, res := range existing {
		if res.ID == excludeID || !res.Status.Blocking() {
			continue
		}
		s, err := parseClock(res.Time)
		if err != nil {
			// A stored window we cannot read is treated as taken.
			return false, nil
		}
		if Overlaps(start, duration, s, res.DurationMin) {
			return false, nil
		}
	}
	return true, nil
}

// candidates keeps tables with capacity >= partySize, ordered by number.
func candidates(tables []model.Table, partySize int) []model.Table {
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity >= partySize {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Candidates lists the tables a staff member could assign to a pending or
// confirmed reservation: they seat the party and are free for its window,
// ignoring the reservation's own current hold.
func (e *Engine) Candidates(ctx context.Context, tenantID, reservationID uint64) ([]model.Table, error) {
	res, err := e.store.GetReservation(ctx, tenantID, reservationID)
	if err != nil {
		return nil, storageErr("get reservation", err)
	}
	if res.Status != model.StatusPending && res.Status != model.StatusConfirmed {
		return nil, fmt.Errorf("%w: a %s reservation cannot be assigned", ErrInvalidTransition, res.Status)
	}
	dur := res.DurationMin
	if dur <= 0 {
		dur = ResolveDuration(res.Time, e.periods)
	}
	start, err := validateWindow(res.Date, res.Time, dur)
	if err != nil {
		return nil, err
	}
	return e.freeTables(ctx, tenantID, res.Date, start, dur, res.PartySize, res.ID)
}

func (e *Engine) freeTables(ctx context.Context, tenantID uint64, date string, start, duration, partySize int, excludeID uint64) ([]model.Table, error) {
	tables, err := e.store.ListTables(ctx, tenantID)
	if err != nil {
		return nil, storageErr("list tables", err)
	}
	out := make([]model.Table, 0, len(tables))
	for _, t := range candidates(tables, partySize) {
		free, err := isFree(ctx, e.store, tenantID, t.ID, date, start, duration, excludeID)
		if err != nil {
			return nil, storageErr("availability", err)
		}
		if free {
			out = append(out, t)
		}
	}
	return out, nil
}
