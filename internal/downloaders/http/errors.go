package swoophttp

import (
	"errors"
	"fmt"
	"net/http"
)

// Classified size-discovery failures.
var (
	ErrNotFound            = errors.New("resource not found (404)")
	ErrForbidden           = errors.New("access forbidden (403)")
	ErrUnauthorized        = errors.New("unauthorized (401)")
	ErrRangeNotSatisfiable = errors.New("requested range not satisfiable (416)")
)

// ErrRangeRequestsNotSupported reports a server that answered a ranged GET
// with a plain 200, ignoring the Range header.
var ErrRangeRequestsNotSupported = errors.New("range requests are not supported")

// StatusError reports a status code outside the handful with dedicated
// classifications.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusRequestedRangeNotSatisfiable:
		return ErrRangeNotSatisfiable
	default:
		return &StatusError{Code: code}
	}
}
