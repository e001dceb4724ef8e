package booking

import (
	"errors"
	"fmt"
)

// Business errors.  They are returned to the caller for display and are
// never retried by the engine.  Callers compare with errors.Is; several are
// wrapped with a message carrying the concrete numbers involved.
var (
	// ErrNoCapacityMatch: no table of the tenant can seat the party.
	ErrNoCapacityMatch = errors.New("no table can seat the party")
	// ErrNoTableAvailable: tables with enough capacity exist but all are booked for the window.
	ErrNoTableAvailable = errors.New("no table is available for the requested time")
	// ErrInsufficientCapacity: a manually chosen table is too small for the party.
	ErrInsufficientCapacity = errors.New("table capacity is below party size")
	// ErrTableNotAvailable: a manually chosen table is booked for the window.
	ErrTableNotAvailable = errors.New("table is booked for the requested time")
	// ErrInvalidTransition: the requested status change is not a modeled transition.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput: malformed date, time, duration or party size.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound: the reservation or table does not exist for the tenant.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a write would violate a uniqueness or dependency rule,
	// e.g. a duplicate table number or deleting a table that is still booked.
	ErrConflict = errors.New("conflict")
)

var businessErrors = []error{
	ErrNoCapacityMatch,
	ErrNoTableAvailable,
	ErrInsufficientCapacity,
	ErrTableNotAvailable,
	ErrInvalidTransition,
	ErrInvalidInput,
	ErrNotFound,
	ErrConflict,
}

// IsBusiness reports whether err is (or wraps) one of the business errors
// above, as opposed to an infrastructure failure.
func IsBusiness(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageError wraps an infrastructure failure (database unreachable, write
// conflict, failed commit).  It is the caller's job to retry or surface it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr passes business errors through untouched and wraps anything
// else in a StorageError tagged with op.
func storageErr(op string, err error) error {
	if err == nil || IsBusiness(err) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
