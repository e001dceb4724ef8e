package booking

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/model"
)

type transitionKey struct {
	from, to model.ReservationStatus
}

// effect applies a transition's side effects to res and its table inside
// tx.  The caller sets the new status, applies admin notes and saves res.
type effect func(ctx context.Context, e *Engine, tx Tx, res *model.Reservation) error

// transitions is the complete lifecycle.  Any pair missing here is
// rejected with ErrInvalidTransition.
var transitions = map[transitionKey]effect{
	{model.StatusPending, model.StatusConfirmed}:   confirm,
	{model.StatusConfirmed, model.StatusSeated}:    markTable(model.TableOccupied),
	{model.StatusSeated, model.StatusCompleted}:    markTable(model.TableAvailable),
	{model.StatusPending, model.StatusCancelled}:   release(true),
	{model.StatusConfirmed, model.StatusCancelled}: release(true),
	{model.StatusConfirmed, model.StatusNoShow}:    release(false),
}

// CanTransition reports whether from -> to is a modeled transition.
func CanTransition(from, to model.ReservationStatus) bool {
	_, ok := transitions[transitionKey{from, to}]
	return ok
}

// NextStatuses lists the statuses reachable from from.
func NextStatuses(from model.ReservationStatus) []model.ReservationStatus {
	var out []model.ReservationStatus
	for _, to := range []model.ReservationStatus{
		model.StatusConfirmed, model.StatusSeated, model.StatusCompleted,
		model.StatusCancelled, model.StatusNoShow,
	} {
		if CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// Transition moves a reservation to status to.  adminNotes, when non-nil,
// replaces the stored notes; nil keeps them.  The reservation and any
// table write are committed together or not at all.
func (e *Engine) Transition(ctx context.Context, tenantID, reservationID uint64, to model.ReservationStatus, adminNotes *string) (model.Reservation, error) {
	var (
		res  model.Reservation
		from model.ReservationStatus
	)
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		res, err = tx.LockReservation(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		from = res.Status
		apply, ok := transitions[transitionKey{from, to}]
		if !ok {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if err := apply(ctx, e, tx, &res); err != nil {
			return err
		}
		res.Status = to
		if adminNotes != nil {
			notes := *adminNotes
			res.AdminNotes = &notes
		}
		return tx.SaveReservation(ctx, res)
	})
	if err != nil {
		return model.Reservation{}, storageErr("transition", err)
	}

	fields := logrus.Fields{
		"tenant_id":      tenantID,
		"reservation_id": res.ID,
		"from":           from,
		"to":             to,
	}
	if res.TableID != nil {
		fields["table_id"] = *res.TableID
	}
	e.log.WithFields(fields).Info("reservation transitioned")
	e.publish(ctx, eventFor("transition", res, from))
	return res, nil
}

// confirm assigns a table automatically when the reservation has none.  A
// reservation that already holds a table keeps it, provided no confirmed
// or seated reservation took that table for an overlapping window while
// this one was pending.
func confirm(ctx context.Context, e *Engine, tx Tx, res *model.Reservation) error {
	if res.DurationMin <= 0 {
		res.DurationMin = ResolveDuration(res.Time, e.periods)
	}
	if res.HasTable() {
		return confirmHeld(ctx, tx, res)
	}
	table, err := e.pickAuto(ctx, tx, *res)
	if err != nil {
		return err
	}
	setAssignment(res, table)
	return tx.SetTableStatus(ctx, res.TenantID, table.ID, model.TableReserved)
}

// confirmHeld rechecks a pending hold under the table lock.  Pending
// reservations do not block, so another booking may have been confirmed
// onto the same table in the meantime.
func confirmHeld(ctx context.Context, tx Tx, res *model.Reservation) error {
	start, err := validateWindow(res.Date, res.Time, res.DurationMin)
	if err != nil {
		return err
	}
	table, err := tx.LockTable(ctx, res.TenantID, *res.TableID)
	if err != nil {
		return err
	}
	free, err := isFree(ctx, tx, res.TenantID, table.ID, res.Date, start, res.DurationMin, res.ID)
	if err != nil {
		return err
	}
	if !free {
		return fmt.Errorf("%w: table %d on %s at %s", ErrTableNotAvailable, table.Number, res.Date, res.Time)
	}
	return nil
}

// markTable sets the assigned table's status.
func markTable(status model.TableStatus) effect {
	return func(ctx context.Context, _ *Engine, tx Tx, res *model.Reservation) error {
		if !res.HasTable() {
			return nil
		}
		return tx.SetTableStatus(ctx, res.TenantID, *res.TableID, status)
	}
}

// release frees the assigned table.  With clear the assignment is dropped
// from the reservation; otherwise it is kept for audit.
func release(clear bool) effect {
	return func(ctx context.Context, _ *Engine, tx Tx, res *model.Reservation) error {
		if !res.HasTable() {
			return nil
		}
		if err := tx.SetTableStatus(ctx, res.TenantID, *res.TableID, model.TableAvailable); err != nil {
			return err
		}
		if clear {
			res.TableID = nil
			res.TableNumber = nil
		}
		return nil
	}
}
