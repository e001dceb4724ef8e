package model

import "time"

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)

// User represents a staff account as stored in the `users` table.  Each
// account belongs to exactly one tenant; tokens issued for it carry the
// tenant id so every staff request is scoped to that tenant.
//
// Fields:
//  ID           – primary key identifier of the user.
//  TenantID     – tenant the account belongs to.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – OWNER or STAFF.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	TenantID     uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
