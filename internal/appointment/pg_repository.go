package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, db: pool}
}

const appointmentColumns = `id, patient_id, doctor_id, specialty, city, scheduled_at, location,
	priority, status, created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var priority, status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Specialty,
		&a.City,
		&a.ScheduledAt,
		&a.Location,
		&priority,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if a.Priority, err = ParsePriority(priority); err != nil {
		return nil, err
	}
	if a.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgRepository) queryAppointments(ctx context.Context, sql string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) Save(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET doctor_id    = EXCLUDED.doctor_id,
		    scheduled_at = EXCLUDED.scheduled_at,
		    location     = EXCLUDED.location,
		    priority     = EXCLUDED.priority,
		    status       = EXCLUDED.status,
		    updated_at   = EXCLUDED.updated_at
		RETURNING `+appointmentColumns,
		appt.ID, appt.PatientID, appt.DoctorID, appt.Specialty, appt.City, appt.ScheduledAt,
		appt.Location, appt.Priority.String(), appt.Status.String(), appt.CreatedAt, appt.UpdatedAt)

	saved, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("save appointment %s: %w", appt.ID, err)
	}
	return saved, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindByStatus(ctx context.Context, status Status) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY scheduled_at NULLS LAST, created_at
	`, status.String())
}

func (r *PgRepository) FindPendingScheduling(ctx context.Context) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'PENDING_SCHEDULING'
		ORDER BY created_at
	`)
}

func (r *PgRepository) ExistsAtDoctorTime(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE doctor_id = $1
			  AND scheduled_at = $2
			  AND status IN ('SCHEDULED', 'CONFIRMED')
		)
	`, doctorID, at).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check doctor %s at %s: %w", doctorID, at.Format(time.RFC3339), err)
	}
	return exists, nil
}

func (r *PgRepository) FindByDoctorAndRange(ctx context.Context, doctorID string, start, end time.Time) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND scheduled_at >= $2
		  AND scheduled_at < $3
		ORDER BY scheduled_at
	`, doctorID, start, end)
}

func (r *PgRepository) FindReschedulable(ctx context.Context, specialty, city string) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'SCHEDULED'
		  AND priority <> 'URGENT'
		  AND specialty = $1
		  AND city = $2
		ORDER BY scheduled_at
	`, specialty, city)
}

func (r *PgRepository) WithTx(ctx context.Context, fn func(Store) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&PgRepository{db: tx})
	})
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
