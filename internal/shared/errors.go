package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Handlers never map these directly;
// platform/httpx translates them into the response envelope.
var (
	// ErrUnauthenticated indicates a missing, invalid, or expired credential,
	// or a credential whose account is gone or inactive.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates a valid identity with insufficient role or permission.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation (email, role title, permission name).
	ErrConflict = errors.New("already exists")
	// ErrInvalidReference indicates a referenced role or permission does not resolve.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrImmutable indicates an attempted mutation of a protected default role.
	ErrImmutable = errors.New("cannot modify protected record")
	// ErrNotFound indicates the target record is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
)

type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

// Wrap attaches a user-facing message to one of the sentinel categories.
// errors.Is still matches the category, while Error() yields the message
// shown to clients.
func Wrap(kind error, msg string) error {
	return &messageError{msg: msg, kind: kind}
}

// Wrapf is Wrap with formatting.
func Wrapf(kind error, format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: kind}
}
