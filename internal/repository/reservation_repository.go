package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo persists reservations.  Dates are stored as DATE and
// start times as TIME; both are read back in the wire formats the engine
// expects (YYYY-MM-DD and HH:MM).
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, tenant_id, DATE_FORMAT(res_date, '%Y-%m-%d'), TIME_FORMAT(res_time, '%H:%i'),
	duration_min, party_size, name, phone, email, preferred_table_number,
	status, table_id, table_number, admin_notes, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		r         model.Reservation
		status    string
		preferred sql.NullInt64
		tableID   sql.NullInt64
		tableNum  sql.NullInt64
		notes     sql.NullString
	)
	err := row.Scan(&r.ID, &r.TenantID, &r.Date, &r.Time,
		&r.DurationMin, &r.PartySize, &r.Name, &r.Phone, &r.Email, &preferred,
		&status, &tableID, &tableNum, &notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	r.Status = model.ReservationStatus(status)
	if preferred.Valid {
		n := int(preferred.Int64)
		r.PreferredTableNumber = &n
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		r.TableID = &id
	}
	if tableNum.Valid {
		n := int(tableNum.Int64)
		r.TableNumber = &n
	}
	if notes.Valid {
		s := notes.String
		r.AdminNotes = &s
	}
	return r, nil
}

// GetReservation loads one reservation of the tenant.
func (r *ReservationRepo) GetReservation(ctx context.Context, tenantID, id uint64) (model.Reservation, error) {
	return r.getReservation(ctx, r.db, tenantID, id, false)
}

// ListBlockingReservations returns the confirmed or seated reservations on
// tableID for date, leaving out excludeID.
func (r *ReservationRepo) ListBlockingReservations(ctx context.Context, tenantID, tableID uint64, date string, excludeID uint64) ([]model.Reservation, error) {
	return r.listBlocking(ctx, r.db, tenantID, tableID, date, excludeID, false)
}

// ListReservations returns the tenant's reservations matching f ordered by
// date, time and id.
func (r *ReservationRepo) ListReservations(ctx context.Context, tenantID uint64, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		where = []string{"tenant_id = ?"}
		args  = []any{tenantID}
	)
	if f.Date != "" {
		where = append(where, "res_date = ?")
		args = append(args, f.Date)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY res_date, res_time, id`
	return r.query(ctx, r.db, q, args...)
}

func (r *ReservationRepo) getReservation(ctx context.Context, q querier, tenantID, id uint64, forUpdate bool) (model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND tenant_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	res, err := scanReservation(q.QueryRowContext(ctx, query, id, tenantID))
	return res, translate(err)
}

// listBlocking backs the availability check.  With lock set the read is a
// shared locking read so it observes the latest committed rows.
func (r *ReservationRepo) listBlocking(ctx context.Context, q querier, tenantID, tableID uint64, date string, excludeID uint64, lock bool) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE tenant_id = ? AND table_id = ? AND res_date = ? AND id <> ?
		  AND status IN ('confirmed','seated')
		ORDER BY res_time, id`
	if lock {
		query += ` LOCK IN SHARE MODE`
	}
	return r.query(ctx, q, query, tenantID, tableID, date, excludeID)
}

func (r *ReservationRepo) query(ctx context.Context, q querier, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and reads the stored row back into res.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(tenant_id, res_date, res_time, duration_min, party_size, name, phone, email,
		 preferred_table_number, status, table_id, table_number, admin_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.TenantID, res.Date, res.Time, res.DurationMin, res.PartySize, res.Name, res.Phone, res.Email,
		nullInt(res.PreferredTableNumber), string(res.Status), nullID(res.TableID), nullInt(res.TableNumber),
		nullString(res.AdminNotes))
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.getReservation(ctx, tx, res.TenantID, uint64(id), false)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// SaveTx writes the mutable fields of a reservation: status, duration,
// table assignment and admin notes.
func (r *ReservationRepo) SaveTx(ctx context.Context, tx *sql.Tx, res model.Reservation) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations
		 SET status = ?, duration_min = ?, table_id = ?, table_number = ?, admin_notes = ?
		 WHERE id = ? AND tenant_id = ?`,
		string(res.Status), res.DurationMin, nullID(res.TableID), nullInt(res.TableNumber), nullString(res.AdminNotes),
		res.ID, res.TenantID)
	return translate(err)
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullID(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
