// Package apperrors defines the error taxonomy shared by the lifecycle
// engine. Callers match with errors.Is; wrapped messages carry the
// human-readable rejection reason.
package apperrors

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrGenerationFailed  = errors.New("document generation failed")
	ErrAnalysisFailed    = errors.New("conflict analysis failed")
	// ErrAborted marks a user-cancelled stream. It is a normal outcome,
	// not a failure; handlers report it without an error status.
	ErrAborted = errors.New("aborted")
	// ErrStreamBusy is returned when a second assistant stream is opened
	// for a conversation key that already has one in flight.
	ErrStreamBusy = errors.New("stream already in progress")
)
