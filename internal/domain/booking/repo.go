package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PatientRepository defines patient storage operations.
type PatientRepository interface {
	// Create inserts a new patient and assigns its ID. A phone or email
	// collision surfaces as ErrConflict.
	Create(ctx context.Context, p *Patient) error
	// GetByID returns the patient with the given ID or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// GetByPhoneOrEmail returns a patient matching either value, or
	// ErrNotFound when no patient matches.
	GetByPhoneOrEmail(ctx context.Context, phone, email string) (*Patient, error)
	// Update writes all mutable fields of p and returns the stored row.
	// ErrNotFound when the patient no longer exists, ErrConflict when the
	// new phone or email collides with another patient.
	Update(ctx context.Context, p *Patient) (*Patient, error)
}

// AppointmentRepository defines appointment storage operations.
type AppointmentRepository interface {
	// Create inserts a new appointment and assigns its ID. A second
	// appointment for the same patient and start time surfaces as
	// ErrConflict.
	Create(ctx context.Context, a *Appointment) error
	// GetByPatientAndTime returns the appointment booked for the patient
	// at exactly the given time, or ErrNotFound.
	GetByPatientAndTime(ctx context.Context, patientID uuid.UUID, at time.Time) (*Appointment, error)
	// List returns every appointment in store order.
	List(ctx context.Context) ([]*Appointment, error)
	// Delete removes the appointment and reports whether a row existed.
	// Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
