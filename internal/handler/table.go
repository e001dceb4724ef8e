package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// QRRenderer produces the PNG QR code for a table.
type QRRenderer interface {
	PNG(tenantID uint64, tableNumber int) ([]byte, error)
}

// TableHandler serves the staff floor plan: table CRUD, the availability
// filter and per-table QR codes.
type TableHandler struct {
	Tables TableStore
	Engine Booker
	QR     QRRenderer
	Cache  CacheInvalidator
	Log    logrus.FieldLogger
}

func NewTableHandler(tables TableStore, engine Booker, qr QRRenderer, cache CacheInvalidator, log logrus.FieldLogger) *TableHandler {
	if cache == nil {
		cache = noCache{}
	}
	return &TableHandler{Tables: tables, Engine: engine, QR: qr, Cache: cache, Log: log}
}

type tableReq struct {
	Number    int               `json:"number"`
	Capacity  int               `json:"capacity"`
	Status    model.TableStatus `json:"status"`
	Mergeable []uint64          `json:"mergeable"`
}

// validate checks the request and that every mergeable id names another
// table of the tenant.
func (h *TableHandler) validate(ctx context.Context, tenantID, selfID uint64, req *tableReq) error {
	if req.Number <= 0 {
		return fmt.Errorf("%w: number must be positive", booking.ErrInvalidInput)
	}
	if req.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", booking.ErrInvalidInput)
	}
	if req.Status == "" {
		req.Status = model.TableAvailable
	}
	if !req.Status.Valid() {
		return fmt.Errorf("%w: unknown table status %q", booking.ErrInvalidInput, req.Status)
	}
	for _, id := range req.Mergeable {
		if id == selfID {
			return fmt.Errorf("%w: a table cannot be merged with itself", booking.ErrInvalidInput)
		}
		if _, err := h.Tables.GetTable(ctx, tenantID, id); err != nil {
			if booking.IsBusiness(err) {
				return fmt.Errorf("%w: mergeable table %d does not exist", booking.ErrInvalidInput, id)
			}
			return err
		}
	}
	return nil
}

// List returns the tenant's tables.  With date, time and party_size it
// returns only tables that can take that party then (duration optional).
func (h *TableHandler) List(c echo.Context) error {
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()

	date, clock := c.QueryParam("date"), c.QueryParam("time")
	if date == "" && clock == "" && c.QueryParam("party_size") == "" {
		tables, err := h.Tables.ListTables(ctx, tenantID)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, tables)
	}
	party, ok := queryInt(c, "party_size", 0)
	if !ok {
		return badRequest(c, "party_size must be a number")
	}
	dur, ok := queryInt(c, "duration", 0)
	if !ok || dur < 0 {
		return badRequest(c, "duration must be a non-negative number")
	}
	tables, err := h.Engine.AvailableTables(ctx, tenantID, date, clock, dur, party)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) Get(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	t, err := h.Tables.GetTable(ctx, middleware.TenantID(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.validate(ctx, tenantID, 0, &req); err != nil {
		return fail(c, h.Log, err)
	}
	t := model.Table{TenantID: tenantID, Number: req.Number, Capacity: req.Capacity, Status: req.Status, Mergeable: req.Mergeable}
	if err := h.Tables.CreateTable(ctx, &t); err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, tenantID)
	return c.JSON(http.StatusCreated, t)
}

// Update replaces a table's number, capacity, status and merge list.
func (h *TableHandler) Update(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.validate(ctx, tenantID, id, &req); err != nil {
		return fail(c, h.Log, err)
	}
	t := model.Table{ID: id, TenantID: tenantID, Number: req.Number, Capacity: req.Capacity, Status: req.Status, Mergeable: req.Mergeable}
	if err := h.Tables.UpdateTable(ctx, t); err != nil {
		return fail(c, h.Log, err)
	}
	updated, err := h.Tables.GetTable(ctx, tenantID, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, tenantID)
	return c.JSON(http.StatusOK, updated)
}

func (h *TableHandler) Delete(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Tables.DeleteTable(ctx, tenantID, id); err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, tenantID)
	return c.NoContent(http.StatusNoContent)
}

// QRCode returns a PNG linking to the booking form for this table.
func (h *TableHandler) QRCode(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	tenantID := middleware.TenantID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	t, err := h.Tables.GetTable(ctx, tenantID, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	png, err := h.QR.PNG(tenantID, t.Number)
	if err != nil {
		return fail(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="table-%d.png"`, t.Number))
	return c.Blob(http.StatusOK, "image/png", png)
}
