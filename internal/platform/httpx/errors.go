package httpx

import (
	"errors"
	"net/http"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Error maps a domain error to its response category. Unexpected errors
// collapse to a generic 500 so internals never leak to clients.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrInvalidReference):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrImmutable):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal server error")
	}
}
