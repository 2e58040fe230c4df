package booking

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a person who can book appointments. Phone and email are
// both unique across patients and double as duplicate-detection keys
// when a patient is registered.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PatientUpdate carries the fields of a patient edit. Nil means the field
// was not supplied and keeps its stored value; the ID is never editable.
type PatientUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// Appointment is a booked visit for a patient. The patient reference is
// stored by ID only and is not constrained by the store, so a deleted or
// never-created patient leaves a dangling reference that listing
// tolerates.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime time.Time `db:"start_time" json:"date"`
	Type      string    `db:"appointment_type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Patient is populated by listing when the referenced patient still
	// exists. It is never persisted.
	Patient *Patient `db:"-" json:"patient,omitempty"`
}
