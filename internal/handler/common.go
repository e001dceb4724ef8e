package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

const requestTimeout = 5 * time.Second

// Consumer-side views of the persistence layer.  Both the MySQL store and
// the in-memory store satisfy them.
type (
	TableStore interface {
		ListTables(ctx context.Context, tenantID uint64) ([]model.Table, error)
		GetTable(ctx context.Context, tenantID, id uint64) (model.Table, error)
		CreateTable(ctx context.Context, t *model.Table) error
		UpdateTable(ctx context.Context, t model.Table) error
		DeleteTable(ctx context.Context, tenantID, id uint64) error
	}

	ReservationStore interface {
		GetReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error)
		ListReservations(ctx context.Context, tenantID uint64, f model.ReservationFilter) ([]model.Reservation, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, u *model.User) error
		GetUserByEmail(ctx context.Context, email string) (model.User, error)
		GetUserByID(ctx context.Context, id uint64) (model.User, error)
	}

	TokenStore interface {
		StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
		ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
		RevokeByHash(ctx context.Context, tokenHash string) error
		RevokeAllForUser(ctx context.Context, userID uint64) error
	}

	// Booker is the booking engine as the handlers use it.
	Booker interface {
		CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error)
		AvailableTables(ctx context.Context, tenantID uint64, date, clock string, durationMin, partySize int) ([]model.Table, error)
		Candidates(ctx context.Context, tenantID, reservationID uint64) ([]model.Table, error)
		Assign(ctx context.Context, tenantID, reservationID uint64, tableID *uint64) (booking.Assignment, error)
		Transition(ctx context.Context, tenantID, reservationID uint64, to model.ReservationStatus, adminNotes *string) (model.Reservation, error)
	}

	// CacheInvalidator drops a tenant's cached public responses.
	CacheInvalidator interface {
		Invalidate(ctx context.Context, tenantID uint64)
	}
)

type noCache struct{}

func (noCache) Invalidate(context.Context, uint64) {}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// classify maps an engine or store error to an HTTP status and a stable
// machine-readable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, booking.ErrInsufficientCapacity):
		return http.StatusUnprocessableEntity, "insufficient_capacity"
	case errors.Is(err, booking.ErrNoCapacityMatch):
		return http.StatusUnprocessableEntity, "no_capacity_match"
	case errors.Is(err, booking.ErrNoTableAvailable):
		return http.StatusConflict, "no_table_available"
	case errors.Is(err, booking.ErrTableNotAvailable):
		return http.StatusConflict, "table_not_available"
	case errors.Is(err, booking.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, booking.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

// fail writes err as a JSON error.  Infrastructure failures are logged and
// hidden behind a generic message.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("route", c.Path()).Error("request failed")
		return c.JSON(status, errorBody{Error: "internal error", Code: code})
	}
	return c.JSON(status, errorBody{Error: err.Error(), Code: code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_input"})
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	return n, err == nil && n > 0
}

// queryInt parses an optional integer query parameter; absent means def.
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
