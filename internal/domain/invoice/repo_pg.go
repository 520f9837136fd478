package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.pool)
}

const rowColumns = `invoices.id, invoices.amount, patients.name, patients.phone, doctors.name,
	invoices.date, invoices.reason, invoices.status`

const joins = `FROM invoices
	JOIN patients ON invoices.patient_id = patients.id
	JOIN doctors ON invoices.doctor_id = doctors.id`

var searchColumns = []string{
	"patients.name",
	"patients.phone",
	"doctors.name",
	"invoices.amount::text",
	"invoices.date::text",
	"invoices.reason",
	"invoices.status",
}

func scanRow(row pgx.Row, inv *Row) error {
	return row.Scan(&inv.ID, &inv.Amount, &inv.PatientName, &inv.Phone, &inv.DoctorName,
		&inv.Date, &inv.Reason, &inv.Status)
}

func scanRows(rows pgx.Rows) ([]*Row, error) {
	defer rows.Close()
	items := []*Row{}
	for rows.Next() {
		var inv Row
		if err := scanRow(rows, &inv); err != nil {
			return nil, err
		}
		items = append(items, &inv)
	}
	return items, rows.Err()
}

func (r *repoPG) Filtered(ctx context.Context, query string, limit, offset int) ([]*Row, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rowColumns+` `+joins+`
		WHERE `+db.ILikeAny(1, searchColumns...)+`
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3`,
		db.ContainsPattern(query), limit, offset)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (r *repoPG) Count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) `+joins+` WHERE `+db.ILikeAny(1, searchColumns...),
		db.ContainsPattern(query)).Scan(&n)
	return n, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Editable, error) {
	var inv Editable
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, (amount / 100.0)::float8, reason, status
		FROM invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.PatientID, &inv.DoctorID, &inv.Amount, &inv.Reason, &inv.Status)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repoPG) Detail(ctx context.Context, id uuid.UUID) (*Row, error) {
	var inv Row
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+rowColumns+` `+joins+` WHERE invoices.id = $1`, id)
	if err := scanRow(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repoPG) Latest(ctx context.Context, limit int) ([]*Row, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rowColumns+` `+joins+`
		ORDER BY invoices.date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO invoices (patient_id, doctor_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date`,
		inv.PatientID, inv.DoctorID, inv.Amount, inv.Reason, inv.Status).Scan(&inv.ID, &inv.Date)
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoices
		SET patient_id = $2, doctor_id = $3, amount = $4, reason = $5, status = $6
		WHERE id = $1`,
		inv.ID, inv.PatientID, inv.DoctorID, inv.Amount, inv.Reason, inv.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
