package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// newMockStore returns a Store on a sqlmock connection.  Expectations are
// checked when the test ends.
func newMockStore(t *testing.T, maxRetries int) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	logger, _ := test.NewNullLogger()
	return NewStore(db, maxRetries, logger), mock
}

var (
	reservationCols = []string{"id", "tenant_id", "res_date", "res_time", "duration_min", "party_size",
		"name", "phone", "email", "preferred_table_number", "status", "table_id", "table_number",
		"admin_notes", "created_at", "updated_at"}
	tableCols = []string{"id", "tenant_id", "number", "capacity", "status", "mergeable", "created_at", "updated_at"}
)

func TestWithinTxRetriesLockConflicts(t *testing.T) {
	store, mock := newMockStore(t, 3)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: errDeadlock, Message: "Deadlock found"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithinTxGivesUpAfterMaxRetries(t *testing.T) {
	store, mock := newMockStore(t, 1)
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	calls := 0
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		calls++
		return &mysql.MySQLError{Number: errLockWaitTimeout, Message: "Lock wait timeout exceeded"}
	})
	require.Error(t, err)
	assert.True(t, retryable(err))
	assert.Equal(t, 2, calls, "first attempt plus one retry")
}

func TestWithinTxDoesNotRetryOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"business", booking.ErrTableNotAvailable},
		{"duplicate key", &mysql.MySQLError{Number: errDupEntry}},
		{"driver", errors.New("bad connection")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t, 3)
			mock.ExpectBegin()
			mock.ExpectRollback()

			calls := 0
			err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
				calls++
				return tt.err
			})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWithinTxRollsBackAfterWrites(t *testing.T) {
	store, mock := newMockStore(t, 3)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE dining_tables SET status = \?`).
		WithArgs("reserved", uint64(4), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		if err := tx.SetTableStatus(ctx, 7, 4, model.TableReserved); err != nil {
			return err
		}
		return booking.ErrInvalidTransition
	})
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestWithinTxHonoursCancelledContext(t *testing.T) {
	store, _ := newMockStore(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTx(ctx, func(ctx context.Context, tx booking.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLockingReadsInsideTx(t *testing.T) {
	store, mock := newMockStore(t, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM dining_tables WHERE id = \? AND tenant_id = \? FOR UPDATE`).
		WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows(tableCols).
			AddRow(1, 7, 1, 4, "available", "[2,3]", now, now))
	mock.ExpectQuery(`(?s)status IN \('confirmed','seated'\).*LOCK IN SHARE MODE`).
		WithArgs(uint64(7), uint64(1), "2025-06-14", uint64(9)).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(3, 7, "2025-06-14", "19:00", 90, 2, "Ada", "555-0100", "", nil, "confirmed", 1, 1, nil, now, now))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		table, err := tx.LockTable(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, table.Capacity)
		assert.Equal(t, []uint64{2, 3}, table.Mergeable)

		blocking, err := tx.ListBlockingReservations(ctx, 7, 1, "2025-06-14", 9)
		require.NoError(t, err)
		require.Len(t, blocking, 1)
		got := blocking[0]
		assert.Equal(t, model.StatusConfirmed, got.Status)
		assert.Equal(t, "19:00", got.Time)
		require.NotNil(t, got.TableID)
		assert.Equal(t, uint64(1), *got.TableID)
		assert.Nil(t, got.PreferredTableNumber)
		assert.Nil(t, got.AdminNotes)
		return nil
	})
	require.NoError(t, err)
}

func TestLockTableMissingIsNotFound(t *testing.T) {
	store, mock := newMockStore(t, 0)
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM dining_tables .* FOR UPDATE`).
		WithArgs(uint64(99), uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		_, err := tx.LockTable(ctx, 7, 99)
		return err
	})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestSaveReservationWritesNullAssignment(t *testing.T) {
	store, mock := newMockStore(t, 0)
	mock.ExpectBegin()
	mock.ExpectExec(`(?s)UPDATE reservations\s+SET status = \?`).
		WithArgs("cancelled", 90, nil, nil, nil, uint64(5), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx booking.Tx) error {
		return tx.SaveReservation(ctx, model.Reservation{
			ID: 5, TenantID: 7, Date: "2025-06-14", Time: "19:00", DurationMin: 90, PartySize: 2,
			Status: model.StatusCancelled,
		})
	})
	require.NoError(t, err)
}
