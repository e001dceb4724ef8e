package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/model"
)

// CreateReservation records a new reservation from the intake form.  The
// reservation always starts pending with no table, whatever the caller
// set; its duration is resolved from the start time unless one is given.
// A preferred table number is stored as a hint only.
func (e *Engine) CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return model.Reservation{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if r.PartySize <= 0 {
		return model.Reservation{}, errPartySize(r.PartySize)
	}
	if r.DurationMin == 0 {
		r.DurationMin = ResolveDuration(r.Time, e.periods)
	}
	if _, err := validateWindow(r.Date, r.Time, r.DurationMin); err != nil {
		return model.Reservation{}, err
	}
	r.Status = model.StatusPending
	r.TableID = nil
	r.TableNumber = nil

	err := e.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertReservation(ctx, &r)
	})
	if err != nil {
		return model.Reservation{}, storageErr("create reservation", err)
	}
	e.log.WithFields(logrus.Fields{
		"tenant_id":      r.TenantID,
		"reservation_id": r.ID,
		"date":           r.Date,
		"time":           r.Time,
		"party_size":     r.PartySize,
	}).Info("reservation created")
	e.publish(ctx, eventFor("created", r, ""))
	return r, nil
}
