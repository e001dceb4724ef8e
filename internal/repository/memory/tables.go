package memory

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// CreateTable inserts t and fills in its ID and timestamps.  A duplicate
// number within the tenant yields booking.ErrConflict.
func (s *Store) CreateTable(_ context.Context, t *model.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.numberTaken(t.TenantID, t.Number, 0) {
		return booking.ErrConflict
	}
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	s.st.nextTable++
	now := time.Now().UTC()
	t.ID = s.st.nextTable
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	cp.Mergeable = append([]uint64(nil), t.Mergeable...)
	s.st.tables[t.ID] = cp
	return nil
}

// UpdateTable replaces number, capacity, status and merge list.
func (s *Store) UpdateTable(_ context.Context, t model.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.st.table(t.TenantID, t.ID)
	if err != nil {
		return err
	}
	if s.st.numberTaken(t.TenantID, t.Number, t.ID) {
		return booking.ErrConflict
	}
	cur.Number = t.Number
	cur.Capacity = t.Capacity
	cur.Status = t.Status
	cur.Mergeable = append([]uint64(nil), t.Mergeable...)
	cur.UpdatedAt = time.Now().UTC()
	s.st.tables[t.ID] = cur
	return nil
}

// DeleteTable removes a table.  It refuses with booking.ErrConflict while a
// live reservation still holds the table.
func (s *Store) DeleteTable(_ context.Context, tenantID, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.st.table(tenantID, id); err != nil {
		return err
	}
	for _, r := range s.st.reservations {
		if r.TenantID == tenantID && r.TableID != nil && *r.TableID == id && !r.Status.Terminal() {
			return booking.ErrConflict
		}
	}
	delete(s.st.tables, id)
	return nil
}

func (st *state) numberTaken(tenantID uint64, number int, selfID uint64) bool {
	for _, t := range st.tables {
		if t.TenantID == tenantID && t.Number == number && t.ID != selfID {
			return true
		}
	}
	return false
}
