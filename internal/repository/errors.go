// Package repository is the MySQL persistence layer.  Repositories speak
// the sentinel errors of the booking package so higher layers never see
// driver errors for expected outcomes: a missing row becomes
// booking.ErrNotFound and a unique-key violation becomes booking.ErrConflict.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/booking"
)

// MySQL server error numbers the repositories react to.
const (
	errDupEntry        = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errRowIsReferenced = 1451
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// retryable reports whether the transaction that produced err lost a lock
// race and can be replayed from the start.
func retryable(err error) bool {
	switch mysqlCode(err) {
	case errDeadlock, errLockWaitTimeout:
		return true
	}
	return false
}

// translate maps expected driver outcomes to booking sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return booking.ErrNotFound
	}
	switch mysqlCode(err) {
	case errDupEntry, errRowIsReferenced:
		return booking.ErrConflict
	}
	return err
}
