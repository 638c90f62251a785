package batch

import (
	"errors"
	"net/http"
)

// Domain errors for batch run operations.
var (
	ErrRunActive        = errors.New("a batch run is already active")
	ErrRunNotFound      = errors.New("run not found")
	ErrRunInFlight      = errors.New("run has not finished")
	ErrValidationFailed = errors.New("intake validation has not passed")
	ErrNoItems          = errors.New("no items registered")
	ErrNoArchive        = errors.New("run produced no artifacts")
)

// MapHTTPStatus maps batch domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrNoArchive) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrRunActive) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRunInFlight) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrNoItems) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
