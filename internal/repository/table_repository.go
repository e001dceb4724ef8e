package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// TableRepo persists dining tables.  Table numbers are unique per tenant
// (uq_tables_tenant_number).
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to db.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, tenant_id, number, capacity, status, mergeable, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var (
		t         model.Table
		status    string
		mergeable sql.NullString
	)
	if err := row.Scan(&t.ID, &t.TenantID, &t.Number, &t.Capacity, &status, &mergeable, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Table{}, err
	}
	t.Status = model.TableStatus(status)
	if mergeable.Valid && strings.TrimSpace(mergeable.String) != "" {
		if err := json.Unmarshal([]byte(mergeable.String), &t.Mergeable); err != nil {
			return model.Table{}, err
		}
	}
	return t, nil
}

func encodeMergeable(ids []uint64) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// GetTable loads one table of the tenant.
func (r *TableRepo) GetTable(ctx context.Context, tenantID, id uint64) (model.Table, error) {
	return r.getTable(ctx, r.db, tenantID, id, false)
}

// ListTables returns the tenant's tables ordered by number.
func (r *TableRepo) ListTables(ctx context.Context, tenantID uint64) ([]model.Table, error) {
	return r.listTables(ctx, r.db, tenantID)
}

func (r *TableRepo) getTable(ctx context.Context, q querier, tenantID, id uint64, forUpdate bool) (model.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE id = ? AND tenant_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTable(q.QueryRowContext(ctx, query, id, tenantID))
	return t, translate(err)
}

func (r *TableRepo) listTables(ctx context.Context, q querier, tenantID uint64) ([]model.Table, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM dining_tables WHERE tenant_id = ? ORDER BY number ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTable inserts t and populates its ID and timestamps.  A duplicate
// number yields booking.ErrConflict.
func (r *TableRepo) CreateTable(ctx context.Context, t *model.Table) error {
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	merge, err := encodeMergeable(t.Mergeable)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dining_tables (tenant_id, number, capacity, status, mergeable) VALUES (?, ?, ?, ?, ?)`,
		t.TenantID, t.Number, t.Capacity, string(t.Status), merge)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetTable(ctx, t.TenantID, uint64(id))
	if err != nil {
		return err
	}
	*t = created
	return nil
}

// UpdateTable replaces number, capacity, status and merge list.
func (r *TableRepo) UpdateTable(ctx context.Context, t model.Table) error {
	merge, err := encodeMergeable(t.Mergeable)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE dining_tables SET number = ?, capacity = ?, status = ?, mergeable = ? WHERE id = ? AND tenant_id = ?`,
		t.Number, t.Capacity, string(t.Status), merge, t.ID, t.TenantID)
	if err != nil {
		return translate(err)
	}
	return r.requireRow(ctx, res, t.TenantID, t.ID)
}

// DeleteTable removes a table unless a live reservation still holds it.
func (r *TableRepo) DeleteTable(ctx context.Context, tenantID, id uint64) error {
	var live int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE tenant_id = ? AND table_id = ? AND status IN ('pending','confirmed','seated')`,
		tenantID, id).Scan(&live)
	if err != nil {
		return err
	}
	if live > 0 {
		return booking.ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM dining_tables WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// SetStatusTx writes a table's status inside tx.
func (r *TableRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, status model.TableStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE dining_tables SET status = ? WHERE id = ? AND tenant_id = ?`, string(status), id, tenantID)
	if err != nil {
		return err
	}
	return r.requireRowTx(ctx, tx, res, tenantID, id)
}

// requireRow distinguishes "no such table" from "nothing changed": MySQL
// reports zero affected rows for an UPDATE that writes identical values.
func (r *TableRepo) requireRow(ctx context.Context, res sql.Result, tenantID, id uint64) error {
	return r.requireRowTx(ctx, r.db, res, tenantID, id)
}

func (r *TableRepo) requireRowTx(ctx context.Context, q querier, res sql.Result, tenantID, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = q.QueryRowContext(ctx, `SELECT 1 FROM dining_tables WHERE id = ? AND tenant_id = ?`, id, tenantID).Scan(&one)
	return translate(err)
}
