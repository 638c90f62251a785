package intake

import (
	"errors"
	"net/http"
)

// Domain errors for intake operations.
var (
	ErrNoFiles      = errors.New("no files provided")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrTagTable     = errors.New("tag table could not be read")
)

// MapHTTPStatus maps intake domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrNoFiles) || errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrTagTable) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
