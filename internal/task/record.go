package task

import "time"

// Status represents the current state of a task.
type Status string

// Possible task status values. Transitions are strictly linear:
// running -> processing -> completed|failed, with the terminal states
// absorbing.
const (
	StatusRunning    Status = "running"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is one of the absorbing end states.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record tracks one submitted unit of work from registration through reaping.
// A record is mutated only by the Runner that owns it; readers always receive
// copies, never the stored instance.
type Record struct {
	// TaskID is the opaque unique handle for the task, immutable after
	// submission.
	TaskID string

	// Status is the task's position in the lifecycle state machine.
	Status Status

	// WebhookURL is the destination for the terminal result notification,
	// immutable after submission.
	WebhookURL string

	// StartedAt is set when the record is registered.
	StartedAt time.Time

	// CompletedAt and FailedAt are mutually exclusive; exactly one is set
	// once the task reaches a terminal state.
	CompletedAt *time.Time
	FailedAt    *time.Time

	// Result holds the task body's return value; present only when the
	// status is completed.
	Result any

	// Error describes the failure; present only when the status is failed.
	Error string

	// ProcessingTime is the elapsed wall-clock seconds from execution start
	// to the terminal state.
	ProcessingTime float64

	// Metadata is caller-supplied context, passed through verbatim to the
	// webhook payload and to status queries.
	Metadata map[string]any
}

// clone returns a copy of the record safe to hand to readers. The metadata
// map is copied so callers cannot observe or race later mutations; Result is
// shared but treated as immutable once set.
func (r *Record) clone() *Record {
	out := *r
	if r.Metadata != nil {
		out.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
