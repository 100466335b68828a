package task

import "time"

// StatusView is the full read-only projection of a record returned by status
// queries.
type StatusView struct {
	TaskID         string         `json:"task_id"`
	Status         Status         `json:"status"`
	WebhookURL     string         `json:"webhook_url"`
	StartedAt      time.Time      `json:"started_at"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime float64        `json:"processing_time,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	FailedAt       *time.Time     `json:"failed_at,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ActiveView is the abbreviated projection used when listing in-flight tasks
// for operational visibility.
type ActiveView struct {
	Status     Status    `json:"status"`
	WebhookURL string    `json:"webhook_url"`
	StartedAt  time.Time `json:"started_at"`
	Endpoint   string    `json:"endpoint,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
}

// Status returns the full view of one task, or false when the ID is unknown.
// An ID that was already reaped is indistinguishable from one that never
// existed.
func (g *Registry) Status(id string) (StatusView, bool) {
	rec, ok := g.Get(id)
	if !ok {
		return StatusView{}, false
	}
	return StatusView{
		TaskID:         rec.TaskID,
		Status:         rec.Status,
		WebhookURL:     rec.WebhookURL,
		StartedAt:      rec.StartedAt,
		Result:         rec.Result,
		Error:          rec.Error,
		ProcessingTime: rec.ProcessingTime,
		CompletedAt:    rec.CompletedAt,
		FailedAt:       rec.FailedAt,
		Metadata:       rec.Metadata,
	}, true
}

// Active returns the abbreviated view of every task that is still running or
// processing, keyed by task ID.
func (g *Registry) Active() map[string]ActiveView {
	records := g.List(func(rec *Record) bool {
		return !rec.Status.Terminal()
	})

	out := make(map[string]ActiveView, len(records))
	for id, rec := range records {
		out[id] = ActiveView{
			Status:     rec.Status,
			WebhookURL: rec.WebhookURL,
			StartedAt:  rec.StartedAt,
			Endpoint:   metadataString(rec.Metadata, "endpoint"),
			EntityID:   metadataString(rec.Metadata, "entity_id"),
		}
	}
	return out
}

// metadataString extracts a string-valued metadata field, returning "" when
// the key is absent or holds a non-string value.
func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	s, _ := metadata[key].(string)
	return s
}
