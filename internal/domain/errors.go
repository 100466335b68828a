package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidContentType is returned when a content type is not one of
	// the supported values.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrEmptyTopic is returned when a content request has no topic.
	ErrEmptyTopic = errors.New("topic cannot be empty")
)
