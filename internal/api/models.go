package api

// GenerationRequest represents the request body for submitting a new
// content-generation task. The webhook URL is validated here, before the
// task core ever sees it.
type GenerationRequest struct {
	ContentType  string         `json:"content_type" validate:"required,oneof=article summary social_post"`
	Topic        string         `json:"topic"        validate:"required,min=1"`
	Instructions string         `json:"instructions" validate:"omitempty,max=2000"`
	WebhookURL   string         `json:"webhook_url"  validate:"required,http_url"`
	Metadata     map[string]any `json:"metadata"`
}

// SubmitResponse acknowledges an accepted task submission.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}
