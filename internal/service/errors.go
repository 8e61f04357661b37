package service

import (
	"net/http"
)

// ValidationError rejects a request before any upstream call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// GatewayError is a failed generation call. The cause stays available through
// Unwrap for logs, but Error never exposes it.
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return "generation failed"
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) StatusCode() int {
	return http.StatusInternalServerError
}
