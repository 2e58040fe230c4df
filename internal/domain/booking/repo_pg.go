package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised when a write collides
// with a unique index.
const uniqueViolation = "23505"

// mapPgError converts driver-level failures into the package error
// taxonomy. Anything unrecognized passes through unchanged.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

const patientCols = `id, name, phone, email, created_at, updated_at`

type patientRepoPG struct {
	pool *pgxpool.Pool
}

// NewPatientRepo returns a Postgres-backed PatientRepository.
func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, name, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Phone, p.Email, p.CreatedAt, p.UpdatedAt)
	return mapPgError(err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *patientRepoPG) GetByPhoneOrEmail(ctx context.Context, phone, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE phone = $1 OR email = $2
		LIMIT 1`,
		phone, email)
	return scanPatient(row)
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patient
		SET name = $2, phone = $3, email = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+patientCols,
		p.ID, p.Name, p.Phone, p.Email)
	return scanPatient(row)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}

const appointmentCols = `id, patient_id, start_time, appointment_type, created_at`

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepo returns a Postgres-backed AppointmentRepository.
func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, start_time, appointment_type, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.PatientID, a.StartTime, a.Type, a.CreatedAt)
	return mapPgError(err)
}

func (r *appointmentRepoPG) GetByPatientAndTime(ctx context.Context, patientID uuid.UUID, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE patient_id = $1 AND start_time = $2`,
		patientID, at)
	return scanAppointment(row)
}

func (r *appointmentRepoPG) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appointmentCols+` FROM appointment`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.StartTime, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.StartTime, &a.Type, &a.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &a, nil
}
