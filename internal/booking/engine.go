// Package booking is the table reservation and availability engine.  It
// decides whether a table is free for a time window, commits table
// assignments (automatically or by explicit choice) and drives reservations
// through their lifecycle while keeping table status in step.  All state
// lives behind Store; the engine holds no mutable state of its own.
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
)

// Notifier receives an event after an assignment or transition commits.
// Errors are logged; they never undo or fail the committed change.
type Notifier interface {
	Notify(ctx context.Context, ev queue.ReservationEvent) error
}

// Engine runs booking operations against a Store.  It is safe for
// concurrent use.
type Engine struct {
	store   Store
	periods *model.ServicePeriods
	log     logrus.FieldLogger
	notify  Notifier
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithServicePeriods sets the per-period durations used by ResolveDuration.
// A nil value keeps the flat default.
func WithServicePeriods(p *model.ServicePeriods) Option {
	return func(e *Engine) { e.periods = p }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithNotifier sets the post-commit event sink.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notify = n }
}

// New returns an Engine bound to store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ServicePeriods returns the configured service periods, or nil.
func (e *Engine) ServicePeriods() *model.ServicePeriods { return e.periods }

func (e *Engine) publish(ctx context.Context, ev queue.ReservationEvent) {
	if e.notify == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = e.now().UTC().Format(time.RFC3339)
	if err := e.notify.Notify(ctx, ev); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"tenant_id":      ev.TenantID,
			"reservation_id": ev.ReservationID,
			"kind":           ev.Kind,
		}).Warn("publish reservation event failed")
	}
}

func eventFor(kind string, r model.Reservation, from model.ReservationStatus) queue.ReservationEvent {
	ev := queue.ReservationEvent{
		Kind:          kind,
		TenantID:      r.TenantID,
		ReservationID: r.ID,
		From:          string(from),
		To:            string(r.Status),
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
	}
	if r.TableID != nil {
		ev.TableID = *r.TableID
	}
	if r.TableNumber != nil {
		ev.TableNumber = *r.TableNumber
	}
	return ev
}
