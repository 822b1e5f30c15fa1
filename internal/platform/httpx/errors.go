package httpx

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation wraps request bodies that fail to decode.
	ErrValidation = errors.New("invalid request body")
	// ErrUnauthorized is returned when no principal is attached to the request.
	ErrUnauthorized = errors.New("authentication required")
)

// RespondError writes the fallback problem for errors a handler did not
// translate itself. Unknown errors become an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
