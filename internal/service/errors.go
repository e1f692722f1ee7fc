package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired          = errors.New("id is required")
	ErrNotFound            = errors.New("not found")
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrPhotoNotFound       = fmt.Errorf("photo %w", ErrNotFound)

	// ErrFileTooLarge is the validation error for photos over the configured limit.
	ErrFileTooLarge = &ValidationError{Message: "Photo exceeds the maximum upload size"}
)

// ValidationError reports invalid client input. Message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
