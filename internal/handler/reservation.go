package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationHandler serves the staff reservation console.
type ReservationHandler struct {
	Reservations ReservationStore
	Engine       Booker
	Cache        CacheInvalidator
	Log          logrus.FieldLogger
}

func NewReservationHandler(res ReservationStore, engine Booker, cache CacheInvalidator, log logrus.FieldLogger) *ReservationHandler {
	if cache == nil {
		cache = noCache{}
	}
	return &ReservationHandler{Reservations: res, Engine: engine, Cache: cache, Log: log}
}

type assignReq struct {
	TableID *uint64 `json:"table_id"`
}

type statusReq struct {
	Status     model.ReservationStatus `json:"status"`
	AdminNotes *string                 `json:"admin_notes"`
}

// List filters by ?date=YYYY-MM-DD and ?status=.
func (h *ReservationHandler) List(c echo.Context) error {
	f := model.ReservationFilter{
		Date:   c.QueryParam("date"),
		Status: model.ReservationStatus(c.QueryParam("status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		return badRequest(c, "unknown status")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.Reservations.ListReservations(ctx, middleware.TenantID(c), f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Reservations.GetReservation(ctx, middleware.TenantID(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Candidates lists the tables the reservation could be assigned to.
func (h *ReservationHandler) Candidates(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	tables, err := h.Engine.Candidates(ctx, middleware.TenantID(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, tables)
}

// Assign commits a table: the one in the body, or the first free one that
// fits when table_id is omitted.
func (h *ReservationHandler) Assign(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.TableID != nil && *req.TableID == 0 {
		return badRequest(c, "table_id must be positive")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	a, err := h.Engine.Assign(ctx, tenantID, id, req.TableID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, tenantID)
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus applies a lifecycle transition.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if !req.Status.Valid() {
		return badRequest(c, "unknown status")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Engine.Transition(ctx, tenantID, id, req.Status, req.AdminNotes)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, tenantID)
	return c.JSON(http.StatusOK, r)
}
