package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/model"
)

// PublicHandler serves guests: the booking form, availability lookups and
// a sanitized floor plan.  The tenant comes from the path.
type PublicHandler struct {
	Engine Booker
	Tables TableStore
	Log    logrus.FieldLogger
}

func NewPublicHandler(engine Booker, tables TableStore, log logrus.FieldLogger) *PublicHandler {
	return &PublicHandler{Engine: engine, Tables: tables, Log: log}
}

type intakeReq struct {
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	PartySize            int    `json:"party_size"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	PreferredTableNumber *int   `json:"preferred_table_number"`
}

// intakeResp omits staff-only fields.
type intakeResp struct {
	ID          uint64                  `json:"id"`
	Status      model.ReservationStatus `json:"status"`
	Date        string                  `json:"date"`
	Time        string                  `json:"time"`
	DurationMin int                     `json:"duration_min"`
	PartySize   int                     `json:"party_size"`
}

type publicTable struct {
	Number   int               `json:"number"`
	Capacity int               `json:"capacity"`
	Status   model.TableStatus `json:"status"`
}

func tenantParam(c echo.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("tenant"), 10, 64)
	return n, err == nil && n > 0
}

// CreateReservation records a pending booking request.
func (h *PublicHandler) CreateReservation(c echo.Context) error {
	tenantID, ok := tenantParam(c)
	if !ok {
		return badRequest(c, "invalid tenant")
	}
	var req intakeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "phone or email required")
	}
	if req.PreferredTableNumber != nil && *req.PreferredTableNumber <= 0 {
		req.PreferredTableNumber = nil
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	r, err := h.Engine.CreateReservation(ctx, model.Reservation{
		TenantID:             tenantID,
		Date:                 strings.TrimSpace(req.Date),
		Time:                 strings.TrimSpace(req.Time),
		PartySize:            req.PartySize,
		Name:                 req.Name,
		Phone:                strings.TrimSpace(req.Phone),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		PreferredTableNumber: req.PreferredTableNumber,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, intakeResp{
		ID: r.ID, Status: r.Status, Date: r.Date, Time: r.Time, DurationMin: r.DurationMin, PartySize: r.PartySize,
	})
}

// Availability lists the tables free for ?date&time&party_size[&duration].
func (h *PublicHandler) Availability(c echo.Context) error {
	tenantID, ok := tenantParam(c)
	if !ok {
		return badRequest(c, "invalid tenant")
	}
	party, ok := queryInt(c, "party_size", 0)
	if !ok {
		return badRequest(c, "party_size must be a number")
	}
	dur, ok := queryInt(c, "duration", 0)
	if !ok || dur < 0 {
		return badRequest(c, "duration must be a non-negative number")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	tables, err := h.Engine.AvailableTables(ctx, tenantID, c.QueryParam("date"), c.QueryParam("time"), dur, party)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]publicTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, publicTable{Number: t.Number, Capacity: t.Capacity, Status: t.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":       c.QueryParam("date"),
		"time":       c.QueryParam("time"),
		"party_size": party,
		"available":  len(out) > 0,
		"tables":     out,
	})
}

// FloorPlan returns the floor plan with coarse status only.
func (h *PublicHandler) FloorPlan(c echo.Context) error {
	tenantID, ok := tenantParam(c)
	if !ok {
		return badRequest(c, "invalid tenant")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	tables, err := h.Tables.ListTables(ctx, tenantID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]publicTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, publicTable{Number: t.Number, Capacity: t.Capacity, Status: t.Status})
	}
	return c.JSON(http.StatusOK, out)
}
