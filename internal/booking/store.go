package booking

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Reader is the read side of the persistence layer.  Every method is scoped
// to a tenant and returns ErrNotFound for a missing record.
type Reader interface {
	GetReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error)
	GetTable(ctx context.Context, tenantID, id uint64) (model.Table, error)
	// ListTables returns all tables of the tenant ordered by ascending number.
	ListTables(ctx context.Context, tenantID uint64) ([]model.Table, error)
	// ListBlockingReservations returns the confirmed or seated reservations
	// on tableID for date, leaving out excludeID (0 excludes nothing).
	ListBlockingReservations(ctx context.Context, tenantID, tableID uint64, date string, excludeID uint64) ([]model.Reservation, error)
}

// Tx is one atomic unit of work.  Reads made through a Tx observe writes
// committed by concurrent transactions that locked the same rows first.
// Nothing written through a Tx is visible to others until WithinTx commits.
type Tx interface {
	Reader
	// LockReservation reads a reservation and holds it until commit.
	LockReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error)
	// LockTable reads a table and holds it until commit, serializing
	// assignments that target the same table.
	LockTable(ctx context.Context, tenantID, id uint64) (model.Table, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// SaveReservation persists status, duration, assignment and admin notes.
	SaveReservation(ctx context.Context, r model.Reservation) error
	SetTableStatus(ctx context.Context, tenantID, tableID uint64, status model.TableStatus) error
}

// Store is the persistence layer the engine runs on.
type Store interface {
	Reader
	// WithinTx runs fn in a transaction.  When fn returns an error, or the
	// commit fails, none of fn's writes are applied and the error is
	// returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
