package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL implementation of booking.Store.  Reads outside a
// transaction go through the embedded repositories; WithinTx hands the
// engine a transaction-bound view of the same repositories.
type Store struct {
	*TableRepo
	*ReservationRepo

	db         *sql.DB
	maxRetries int
	log        logrus.FieldLogger
}

// NewStore builds a Store.  A transaction aborted by a deadlock or lock
// wait timeout is replayed up to maxRetries times.
func NewStore(db *sql.DB, maxRetries int, log logrus.FieldLogger) *Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		TableRepo:       NewTableRepo(db),
		ReservationRepo: NewReservationRepo(db),
		db:              db,
		maxRetries:      maxRetries,
		log:             log,
	}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

// WithinTx implements booking.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	backoff := 20 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil || !retryable(err) || attempt >= s.maxRetries {
			return err
		}
		s.log.WithError(err).WithField("attempt", attempt+1).Warn("transaction aborted by lock conflict, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &sqlTx{tx: tx, tables: s.TableRepo, reservations: s.ReservationRepo}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx implements booking.Tx on a *sql.Tx.  Every read of a blocking
// reservation inside it is a locking read, so it sees rows committed by
// transactions that held the same table lock before it.
type sqlTx struct {
	tx           *sql.Tx
	tables       *TableRepo
	reservations *ReservationRepo
}

func (t *sqlTx) GetReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error) {
	return t.reservations.getReservation(ctx, t.tx, tenantID, id, false)
}

func (t *sqlTx) GetTable(ctx context.Context, tenantID, id uint64) (model.Table, error) {
	return t.tables.getTable(ctx, t.tx, tenantID, id, false)
}

func (t *sqlTx) ListTables(ctx context.Context, tenantID uint64) ([]model.Table, error) {
	return t.tables.listTables(ctx, t.tx, tenantID)
}

func (t *sqlTx) ListBlockingReservations(ctx context.Context, tenantID, tableID uint64, date string, excludeID uint64) ([]model.Reservation, error) {
	return t.reservations.listBlocking(ctx, t.tx, tenantID, tableID, date, excludeID, true)
}

func (t *sqlTx) LockReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error) {
	return t.reservations.getReservation(ctx, t.tx, tenantID, id, true)
}

func (t *sqlTx) LockTable(ctx context.Context, tenantID, id uint64) (model.Table, error) {
	return t.tables.getTable(ctx, t.tx, tenantID, id, true)
}

func (t *sqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.reservations.CreateTx(ctx, t.tx, r)
}

func (t *sqlTx) SaveReservation(ctx context.Context, r model.Reservation) error {
	return t.reservations.SaveTx(ctx, t.tx, r)
}

func (t *sqlTx) SetTableStatus(ctx context.Context, tenantID, tableID uint64, status model.TableStatus) error {
	return t.tables.SetStatusTx(ctx, t.tx, tenantID, tableID, status)
}
