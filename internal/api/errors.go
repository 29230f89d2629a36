package api

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNoToken      = errors.New("api: login response carried no token")
)

// Error is a failed backend call. Status is 0 when no response arrived.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return e.cause
}

// StatusOr returns the backend status of err, or def when err carries none.
func StatusOr(err error, def int) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return def
}

type errorBody struct {
	Message string `json:"message"`
}
