package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusSeated    ReservationStatus = "seated"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusNoShow    ReservationStatus = "no-show"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Blocking reports whether a reservation in status s occupies its table's
// time window.  Only confirmed and seated reservations block availability.
func (s ReservationStatus) Blocking() bool {
	return s == StatusConfirmed || s == StatusSeated
}

// Reservation records a party's booking of a table for a time window on a
// given date.  Reservations are created pending with no table and are
// never deleted; cancelled and no-show are retained terminal states.
//
// Fields:
//  ID                   – primary key identifier.
//  TenantID             – tenant that owns the reservation.
//  Date                 – calendar date, YYYY-MM-DD.
//  Time                 – start time of day, HH:MM.
//  DurationMin          – length of the window in minutes.
//  PartySize            – number of guests.
//  Name, Phone, Email   – contact details from the intake form.
//  PreferredTableNumber – advisory table number chosen by the guest.
//  Status               – lifecycle state.
//  TableID, TableNumber – assigned table, once committed.
//  AdminNotes           – free text kept across transitions.
//  CreatedAt, UpdatedAt – timestamps.
type Reservation struct {
	ID                   uint64            `json:"id"`
	TenantID             uint64            `json:"tenant_id"`
	Date                 string            `json:"date"`
	Time                 string            `json:"time"`
	DurationMin          int               `json:"duration_min"`
	PartySize            int               `json:"party_size"`
	Name                 string            `json:"name"`
	Phone                string            `json:"phone"`
	Email                string            `json:"email"`
	PreferredTableNumber *int              `json:"preferred_table_number,omitempty"`
	Status               ReservationStatus `json:"status"`
	TableID              *uint64           `json:"table_id,omitempty"`
	TableNumber          *int              `json:"table_number,omitempty"`
	AdminNotes           *string           `json:"admin_notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// HasTable reports whether a table has been committed to the reservation.
func (r Reservation) HasTable() bool { return r.TableID != nil }

// ReservationFilter narrows reservation listings for the staff console.
// Zero values mean "any".
type ReservationFilter struct {
	Date   string
	Status ReservationStatus
}
