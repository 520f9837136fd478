package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.pool)
}

func (r *repoPG) CountAppointments(ctx context.Context, rg Range) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE appointment_date >= $1 AND appointment_date < $2`,
		rg.Start, rg.End).Scan(&n)
	return n, err
}

func (r *repoPG) InvoiceTotals(ctx context.Context, rg Range, doctorID *uuid.UUID) (Totals, error) {
	var t Totals
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0)
		FROM invoices
		WHERE date >= $1 AND date < $2
			AND ($3::uuid IS NULL OR doctor_id = $3)`,
		rg.Start, rg.End, doctorID).Scan(&t.Count, &t.Paid, &t.Pending)
	return t, err
}

func (r *repoPG) CountNewPatients(ctx context.Context, rg Range) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE created_at >= $1 AND created_at < $2`,
		rg.Start, rg.End).Scan(&n)
	return n, err
}

// MonthlyRevenue buckets invoices into the given ranges in one round trip.
// Months without invoices come back as zero.
func (r *repoPG) MonthlyRevenue(ctx context.Context, months []Range) ([]MonthAmounts, error) {
	starts := make([]time.Time, len(months))
	ends := make([]time.Time, len(months))
	for i, m := range months {
		starts[i], ends[i] = m.Start, m.End
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT
			m.idx,
			(COALESCE(SUM(invoices.amount) FILTER (WHERE invoices.status = 'paid'), 0) / 100.0)::float8,
			(COALESCE(SUM(invoices.amount) FILTER (WHERE invoices.status = 'pending'), 0) / 100.0)::float8
		FROM unnest($1::timestamptz[], $2::timestamptz[]) WITH ORDINALITY AS m(start_at, end_at, idx)
		LEFT JOIN invoices ON invoices.date >= m.start_at AND invoices.date < m.end_at
		GROUP BY m.idx
		ORDER BY m.idx`,
		starts, ends)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MonthAmounts, len(months))
	for rows.Next() {
		var idx int64
		var a MonthAmounts
		if err := rows.Scan(&idx, &a.Paid, &a.Pending); err != nil {
			return nil, err
		}
		if idx < 1 || int(idx) > len(out) {
			return nil, fmt.Errorf("revenue bucket %d out of range", idx)
		}
		out[idx-1] = a
	}
	return out, rows.Err()
}
