package appointment

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

const rowColumns = `appointments.id, patients.name, patients.phone, doctors.name,
	appointments.appointment_date, appointments.reason, appointments.date`

const joins = `FROM appointments
	JOIN patients ON appointments.patient_id = patients.id
	JOIN doctors ON appointments.doctor_id = doctors.id`

var searchColumns = []string{
	"patients.name",
	"patients.phone",
	"doctors.name",
	"appointments.appointment_date::text",
	"appointments.date::text",
	"appointments.reason",
}

func scanRows(rows pgx.Rows) ([]*Row, error) {
	defer rows.Close()
	items := []*Row{}
	for rows.Next() {
		var a Row
		if err := rows.Scan(&a.ID, &a.PatientName, &a.Phone, &a.DoctorName,
			&a.AppointmentDate, &a.Reason, &a.Date); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *repoPG) Filtered(ctx context.Context, query string, limit, offset int) ([]*Row, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rowColumns+` `+joins+`
		WHERE `+db.ILikeAny(1, searchColumns...)+`
		ORDER BY appointments.appointment_date ASC
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

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, appointment_date, reason, date
		FROM appointments WHERE id = $1`, id).
		Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Reason, &a.Date)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Latest(ctx context.Context, limit int) ([]*Row, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rowColumns+` `+joins+`
		ORDER BY appointments.appointment_date ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date`,
		a.PatientID, a.DoctorID, a.AppointmentDate, a.Reason).Scan(&a.ID, &a.Date)
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2, doctor_id = $3, appointment_date = $4, reason = $5
		WHERE id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
