package model

import "time"

// TableStatus is the coarse, non time-aware status of a table.  It is a
// display hint updated as a side effect of reservation transitions; it is
// never consulted when deciding whether a table is free for a window.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is one of the known table statuses.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// Table describes a bookable seating unit owned by a tenant.
//
// Fields:
//  ID        – primary key identifier.
//  TenantID  – tenant that owns the table.
//  Number    – display number, unique per tenant.
//  Capacity  – largest party the table can seat.
//  Status    – coarse status (available, occupied, reserved).
//  Mergeable – ids of tables this one may be linked with on the floor plan.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Table struct {
	ID        uint64      `json:"id"`
	TenantID  uint64      `json:"tenant_id"`
	Number    int         `json:"number"`
	Capacity  int         `json:"capacity"`
	Status    TableStatus `json:"status"`
	Mergeable []uint64    `json:"mergeable"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
