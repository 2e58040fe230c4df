package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/pkg/phone"
)

// dateLayouts are the accepted input forms for appointment dates, tried in
// order. Bare dates become midnight UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, ErrInvalidArgument)
}

// Service implements the booking operations over the two repositories.
// Uniqueness and referential rules live here rather than in the store;
// the store's unique indexes only close the window between a check and
// the write that follows it.
type Service struct {
	patients     PatientRepository
	appointments AppointmentRepository
	validPhone   func(string) bool
}

// NewService creates a booking service using the default phone format
// check.
func NewService(patients PatientRepository, appointments AppointmentRepository) *Service {
	return &Service{
		patients:     patients,
		appointments: appointments,
		validPhone:   phone.Valid,
	}
}

// SetPhoneValidator replaces the phone format check. Tests use this to
// substitute a stub; deployments can use it for stricter numbering rules.
func (s *Service) SetPhoneValidator(fn func(string) bool) {
	s.validPhone = fn
}

// AddPatient registers a new patient. Phone and email must not match any
// existing patient. The phone format check does not run here; it applies
// only when contact details are edited.
func (s *Service) AddPatient(ctx context.Context, name, phone, email string) (*Patient, error) {
	if name == "" || phone == "" || email == "" {
		return nil, fmt.Errorf("name, phone and email are required: %w", ErrInvalidArgument)
	}

	existing, err := s.patients.GetByPhoneOrEmail(ctx, phone, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("patient already exists: %w", ErrConflict)
	}

	p := &Patient{Name: name, Phone: phone, Email: email}
	if err := s.patients.Create(ctx, p); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("patient already exists: %w", err)
		}
		return nil, err
	}
	return p, nil
}

// GetPatient returns the patient with the given ID.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", id, err)
		}
		return nil, err
	}
	return p, nil
}

// UpdatePatient edits the supplied fields of a patient and returns the
// stored result. A supplied phone must pass the format check even when
// its value is unchanged. Existence is verified both at the read and at
// the write, so a patient removed in between still reports not found.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", id, err)
		}
		return nil, err
	}

	if upd.Phone != nil && !s.validPhone(*upd.Phone) {
		return nil, fmt.Errorf("invalid phone %q: %w", *upd.Phone, ErrInvalidArgument)
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}

	updated, err := s.patients.Update(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("patient %s: %w", id, err)
		case errors.Is(err, ErrConflict):
			return nil, fmt.Errorf("phone or email already in use: %w", err)
		}
		return nil, err
	}
	return updated, nil
}

// AddAppointment books a visit. The patient reference is recorded as
// given; whether such a patient exists is not checked. A patient can hold
// only one appointment per start time.
func (s *Service) AddAppointment(ctx context.Context, patientID uuid.UUID, date, apptType string) (*Appointment, error) {
	start, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if apptType == "" {
		return nil, fmt.Errorf("type is required: %w", ErrInvalidArgument)
	}

	if _, err := s.appointments.GetByPatientAndTime(ctx, patientID, start); err == nil {
		return nil, fmt.Errorf("duplicate appointment for patient and date: %w", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	a := &Appointment{PatientID: patientID, StartTime: start, Type: apptType}
	if err := s.appointments.Create(ctx, a); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("duplicate appointment for patient and date: %w", err)
		}
		return nil, err
	}
	return a, nil
}

// ListAppointments returns every appointment with its patient attached.
// Appointments whose patient no longer exists are still listed, with the
// patient field left empty.
func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	items, err := s.appointments.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range items {
		p, err := s.patients.GetByID(ctx, a.PatientID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		a.Patient = p
	}
	return items, nil
}

// DeleteAppointment removes an appointment and reports whether one
// existed. Repeating a delete returns false rather than an error.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.appointments.Delete(ctx, id)
}
