package booking

import "errors"

// Sentinel errors classifying every failure the booking operations can
// produce. Callers branch with errors.Is; the HTTP layer maps them to
// status codes. Services wrap these with fmt.Errorf("...: %w", err) to
// attach a human-readable message.
var (
	// ErrNotFound is returned when no record matches the given identifier.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would collide with an existing
	// record: a patient with the same phone or email, or a second
	// appointment for the same patient and time.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument is returned for missing required fields,
	// unparseable dates and phone numbers that fail the format check.
	ErrInvalidArgument = errors.New("invalid argument")
)
