package task

import "errors"

// Common errors returned by the task registry.
var (
	// ErrDuplicateTask is returned when a record is inserted under a task ID
	// that already exists. The ID scheme makes this practically impossible,
	// so hitting it signals a logic bug in the caller.
	ErrDuplicateTask = errors.New("task ID already registered")

	// ErrTaskNotFound is returned when an update or query targets a task ID
	// that is not present, either because it never existed or because the
	// record has already been reaped.
	ErrTaskNotFound = errors.New("task not found")
)
