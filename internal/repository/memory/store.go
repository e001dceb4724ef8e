// Package memory is an in-process implementation of the persistence layer.
// It backs the server when STORAGE=memory and the test suites.  Every
// transaction runs against a private copy of the state that replaces the
// shared state only on success, so a failed transaction leaves nothing
// behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Store holds tables, reservations and staff accounts in memory.
// Transactions are fully serialized.
type Store struct {
	mu sync.Mutex
	st *state

	// FailTableWrites, when set, is returned by every table status write
	// made inside a transaction.
	FailTableWrites error
}

type refreshToken struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type state struct {
	tables       map[uint64]model.Table
	reservations map[uint64]model.Reservation
	users        map[uint64]model.User
	tokens       map[string]refreshToken

	nextTable, nextReservation, nextUser uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{st: &state{
		tables:       map[uint64]model.Table{},
		reservations: map[uint64]model.Reservation{},
		users:        map[uint64]model.User{},
		tokens:       map[string]refreshToken{},
	}}
}

func (s *state) clone() *state {
	c := &state{
		tables:          make(map[uint64]model.Table, len(s.tables)),
		reservations:    make(map[uint64]model.Reservation, len(s.reservations)),
		users:           make(map[uint64]model.User, len(s.users)),
		tokens:          make(map[string]refreshToken, len(s.tokens)),
		nextTable:       s.nextTable,
		nextReservation: s.nextReservation,
		nextUser:        s.nextUser,
	}
	for k, v := range s.tables {
		v.Mergeable = append([]uint64(nil), v.Mergeable...)
		c.tables[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// WithinTx implements booking.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &tx{st: work, failTables: s.FailTableWrites}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// read runs fn against the committed state.
func (s *Store) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// ---- booking.Reader ----

func (s *Store) GetReservation(_ context.Context, tenantID, id uint64) (r model.Reservation, err error) {
	s.read(func(st *state) { r, err = st.reservation(tenantID, id) })
	return
}

func (s *Store) GetTable(_ context.Context, tenantID, id uint64) (t model.Table, err error) {
	s.read(func(st *state) { t, err = st.table(tenantID, id) })
	return
}

func (s *Store) ListTables(_ context.Context, tenantID uint64) (out []model.Table, err error) {
	s.read(func(st *state) { out = st.listTables(tenantID) })
	return
}

func (s *Store) ListBlockingReservations(_ context.Context, tenantID, tableID uint64, date string, excludeID uint64) (out []model.Reservation, err error) {
	s.read(func(st *state) { out = st.blocking(tenantID, tableID, date, excludeID) })
	return
}

func (st *state) reservation(tenantID, id uint64) (model.Reservation, error) {
	r, ok := st.reservations[id]
	if !ok || r.TenantID != tenantID {
		return model.Reservation{}, booking.ErrNotFound
	}
	return r, nil
}

func (st *state) table(tenantID, id uint64) (model.Table, error) {
	t, ok := st.tables[id]
	if !ok || t.TenantID != tenantID {
		return model.Table{}, booking.ErrNotFound
	}
	t.Mergeable = append([]uint64(nil), t.Mergeable...)
	return t, nil
}

func (st *state) listTables(tenantID uint64) []model.Table {
	out := make([]model.Table, 0)
	for _, t := range st.tables {
		if t.TenantID == tenantID {
			t.Mergeable = append([]uint64(nil), t.Mergeable...)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (st *state) blocking(tenantID, tableID uint64, date string, excludeID uint64) []model.Reservation {
	out := make([]model.Reservation, 0)
	for _, r := range st.reservations {
		if r.TenantID != tenantID || r.TableID == nil || *r.TableID != tableID {
			continue
		}
		if r.Date != date || r.ID == excludeID || !r.Status.Blocking() {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- booking.Tx ----

type tx struct {
	st         *state
	failTables error
}

func (t *tx) GetReservation(_ context.Context, tenantID, id uint64) (model.Reservation, error) {
	return t.st.reservation(tenantID, id)
}

func (t *tx) GetTable(_ context.Context, tenantID, id uint64) (model.Table, error) {
	return t.st.table(tenantID, id)
}

func (t *tx) ListTables(_ context.Context, tenantID uint64) ([]model.Table, error) {
	return t.st.listTables(tenantID), nil
}

func (t *tx) ListBlockingReservations(_ context.Context, tenantID, tableID uint64, date string, excludeID uint64) ([]model.Reservation, error) {
	return t.st.blocking(tenantID, tableID, date, excludeID), nil
}

func (t *tx) LockReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error) {
	return t.GetReservation(ctx, tenantID, id)
}

func (t *tx) LockTable(ctx context.Context, tenantID, id uint64) (model.Table, error) {
	return t.GetTable(ctx, tenantID, id)
}

func (t *tx) InsertReservation(_ context.Context, r *model.Reservation) error {
	t.st.nextReservation++
	now := time.Now().UTC()
	r.ID = t.st.nextReservation
	r.CreatedAt, r.UpdatedAt = now, now
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *tx) SaveReservation(_ context.Context, r model.Reservation) error {
	cur, err := t.st.reservation(r.TenantID, r.ID)
	if err != nil {
		return err
	}
	cur.Status = r.Status
	cur.DurationMin = r.DurationMin
	cur.TableID = r.TableID
	cur.TableNumber = r.TableNumber
	cur.AdminNotes = r.AdminNotes
	cur.UpdatedAt = time.Now().UTC()
	t.st.reservations[r.ID] = cur
	return nil
}

func (t *tx) SetTableStatus(_ context.Context, tenantID, tableID uint64, status model.TableStatus) error {
	if t.failTables != nil {
		return t.failTables
	}
	cur, err := t.st.table(tenantID, tableID)
	if err != nil {
		return err
	}
	cur.Status = status
	cur.UpdatedAt = time.Now().UTC()
	t.st.tables[tableID] = cur
	return nil
}
