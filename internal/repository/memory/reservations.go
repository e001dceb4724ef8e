package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ListReservations returns the tenant's reservations matching f, ordered by
// date, time and id.
func (s *Store) ListReservations(_ context.Context, tenantID uint64, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.st.reservations {
		if r.TenantID != tenantID {
			continue
		}
		if f.Date != "" && r.Date != f.Date {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}
