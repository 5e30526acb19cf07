package domain

import "errors"

// Error kinds. Every business error in the system wraps exactly one of these so
// callers can classify it with errors.Is without knowing the concrete error.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidArgument is returned when input validation fails
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFailedPrecondition is returned when the system is not in a state that allows the operation
	ErrFailedPrecondition = errors.New("failed precondition")
	// ErrUnauthorized is returned when credentials are missing, invalid or expired
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// ErrConflict is an alias of ErrAlreadyExists used for duplicate submissions.
var ErrConflict = ErrAlreadyExists

// Kind returns the sentinel kind wrapped by err, or nil when err is not a
// domain error.
func Kind(err error) error {
	for _, k := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidArgument,
		ErrFailedPrecondition,
		ErrUnauthorized,
		ErrForbidden,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
