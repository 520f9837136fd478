package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.pool)
}

var searchColumns = []string{"patients.name", "patients.phone"}

func (r *repoPG) Filtered(ctx context.Context, query string, limit, offset int) ([]*TableRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT
			patients.id,
			patients.name,
			patients.phone,
			COUNT(invoices.id),
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0)
		FROM patients
		LEFT JOIN invoices ON patients.id = invoices.patient_id
		WHERE `+db.ILikeAny(1, searchColumns...)+`
		GROUP BY patients.id, patients.name, patients.phone
		ORDER BY patients.name ASC
		LIMIT $2 OFFSET $3`,
		db.ContainsPattern(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*TableRow{}
	for rows.Next() {
		var p TableRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.TotalInvoices, &p.TotalPending, &p.TotalPaid); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE `+db.ILikeAny(1, searchColumns...),
		db.ContainsPattern(query)).Scan(&n)
	return n, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, phone, created_at FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Option, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name FROM patients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Option{}
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		items = append(items, &o)
	}
	return items, rows.Err()
}

func (r *repoPG) Invoices(ctx context.Context, patientID uuid.UUID) ([]*InvoiceHistoryItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT invoices.id, invoices.amount, invoices.date, invoices.reason, invoices.status,
			doctors.name, patients.name
		FROM invoices
		JOIN doctors ON invoices.doctor_id = doctors.id
		JOIN patients ON invoices.patient_id = patients.id
		WHERE invoices.patient_id = $1
		ORDER BY invoices.date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*InvoiceHistoryItem{}
	for rows.Next() {
		var it InvoiceHistoryItem
		if err := rows.Scan(&it.ID, &it.Amount, &it.Date, &it.Reason, &it.Status, &it.DoctorName, &it.Name); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Create inserts p with a single statement; a nil Phone stores NULL.
func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patients (name, phone) VALUES ($1, $2) RETURNING id, created_at`,
		p.Name, p.Phone).Scan(&p.ID, &p.CreatedAt)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET name = $2, phone = $3 WHERE id = $1`, p.ID, p.Name, p.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
