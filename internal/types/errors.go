package types

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrQueueFull     = errors.New("job queue is full, try again later")
	ErrNotConfigured = errors.New("integration is not configured")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpstream      = errors.New("upstream request failed")
)

type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
