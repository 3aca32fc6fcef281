package apperrors

import "errors"

// Error kinds shared across repositories, services and controllers. Handlers
// match these with errors.Is and map them to HTTP status codes in one place.
var (
	// ErrNotFound signals that an event or license does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden signals that an event exists but is deactivated. Public
	// lookups must return this instead of ErrNotFound so clients can tell a
	// closed event apart from a wrong code.
	ErrForbidden = errors.New("event is not active")

	// ErrDuplicateCode signals an event code collision on insert. It is
	// retried internally and never reaches an API response.
	ErrDuplicateCode = errors.New("event code already exists")

	// ErrValidation signals malformed caller input (bad pagination bounds,
	// unparseable dates, missing required fields).
	ErrValidation = errors.New("invalid input")

	// ErrUpstream signals a failure in an external collaborator (classifier,
	// profile generator, blob storage).
	ErrUpstream = errors.New("upstream service failed")

	// ErrRender signals that the certificate compositor could not decode the
	// source photo. There is no partial certificate output.
	ErrRender = errors.New("certificate rendering failed")
)
