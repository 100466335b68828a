package gemini

import "errors"

// Errors specific to the Gemini generator.
var (
	// ErrEmptyPrompt is returned when prompt creation is attempted with no
	// usable request content.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
