package booking

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Assignment is the table committed to a reservation.
type Assignment struct {
	ReservationID uint64 `json:"reservation_id"`
	TableID       uint64 `json:"table_id"`
	TableNumber   int    `json:"table_number"`
}

// Assign commits a table to a pending or confirmed reservation.  With a nil
// tableID the lowest-numbered table that seats the party and is free for
// the window is chosen; otherwise the given table is validated.  The
// reservation's assignment and the table's reserved status are written in
// one transaction, and the availability check runs inside that same
// transaction with the table row locked.
func (e *Engine) Assign(ctx context.Context, tenantID, reservationID uint64, tableID *uint64) (Assignment, error) {
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
		if res.Status != model.StatusPending && res.Status != model.StatusConfirmed {
			return fmt.Errorf("%w: cannot assign a table to a %s reservation", ErrInvalidTransition, res.Status)
		}
		if res.DurationMin <= 0 {
			res.DurationMin = ResolveDuration(res.Time, e.periods)
		}
		var table model.Table
		if tableID != nil {
			table, err = e.pickManual(ctx, tx, res, *tableID)
		} else {
			table, err = e.pickAuto(ctx, tx, res)
		}
		if err != nil {
			return err
		}
		if res.TableID != nil && *res.TableID != table.ID {
			if err := tx.SetTableStatus(ctx, tenantID, *res.TableID, model.TableAvailable); err != nil {
				return err
			}
		}
		setAssignment(&res, table)
		if err := tx.SaveReservation(ctx, res); err != nil {
			return err
		}
		return tx.SetTableStatus(ctx, tenantID, table.ID, model.TableReserved)
	})
	if err != nil {
		return Assignment{}, storageErr("assign", err)
	}

	out := Assignment{ReservationID: res.ID, TableID: *res.TableID, TableNumber: *res.TableNumber}
	e.log.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"reservation_id": res.ID,
		"table_id":       out.TableID,
		"table_number":   out.TableNumber,
		"manual":         tableID != nil,
	}).Info("table assigned")
	e.publish(ctx, eventFor("assigned", res, from))
	return out, nil
}

// pickManual validates an explicitly chosen table.
func (e *Engine) pickManual(ctx context.Context, tx Tx, res model.Reservation, tableID uint64) (model.Table, error) {
	start, err := validateWindow(res.Date, res.Time, res.DurationMin)
	if err != nil {
		return model.Table{}, err
	}
	table, err := tx.LockTable(ctx, res.TenantID, tableID)
	if err != nil {
		return model.Table{}, err
	}
	if table.Capacity < res.PartySize {
		return model.Table{}, fmt.Errorf("%w: table %d seats %d, party size is %d",
			ErrInsufficientCapacity, table.Number, table.Capacity, res.PartySize)
	}
	free, err := isFree(ctx, tx, res.TenantID, table.ID, res.Date, start, res.DurationMin, res.ID)
	if err != nil {
		return model.Table{}, err
	}
	if !free {
		return model.Table{}, fmt.Errorf("%w: table %d on %s at %s", ErrTableNotAvailable, table.Number, res.Date, res.Time)
	}
	return table, nil
}

// pickAuto returns the first table, in ascending number, that seats the
// party and is free.  Each candidate is locked before its reservations are
// read; the fixed order keeps concurrent callers from deadlocking.
func (e *Engine) pickAuto(ctx context.Context, tx Tx, res model.Reservation) (model.Table, error) {
	start, err := validateWindow(res.Date, res.Time, res.DurationMin)
	if err != nil {
		return model.Table{}, err
	}
	if res.PartySize <= 0 {
		return model.Table{}, errPartySize(res.PartySize)
	}
	tables, err := tx.ListTables(ctx, res.TenantID)
	if err != nil {
		return model.Table{}, err
	}
	cands := candidates(tables, res.PartySize)
	if len(cands) == 0 {
		return model.Table{}, fmt.Errorf("%w: party size %d", ErrNoCapacityMatch, res.PartySize)
	}
	for _, c := range cands {
		table, err := tx.LockTable(ctx, res.TenantID, c.ID)
		if err != nil {
			return model.Table{}, err
		}
		free, err := isFree(ctx, tx, res.TenantID, table.ID, res.Date, start, res.DurationMin, res.ID)
		if err != nil {
			return model.Table{}, err
		}
		if free {
			return table, nil
		}
	}
	return model.Table{}, fmt.Errorf("%w: party size %d on %s at %s", ErrNoTableAvailable, res.PartySize, res.Date, res.Time)
}

func setAssignment(res *model.Reservation, t model.Table) {
	id, num := t.ID, t.Number
	res.TableID = &id
	res.TableNumber = &num
}

func errPartySize(n int) error {
	return fmt.Errorf("%w: party size must be positive, got %d", ErrInvalidInput, n)
}
