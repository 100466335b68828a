package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/nfoster/taskrelay/internal/api/shared"
	"github.com/nfoster/taskrelay/internal/domain"
	"github.com/nfoster/taskrelay/internal/generation"
	"github.com/nfoster/taskrelay/internal/task"
)

// Submitter launches a task body without blocking and returns its task ID.
type Submitter interface {
	Submit(
		ctx context.Context,
		prefix string,
		webhookURL string,
		body task.Body,
		metadata map[string]any,
	) (string, error)
}

// GenerationHandler handles content-generation submission requests.
type GenerationHandler struct {
	generator generation.Generator
	tasks     Submitter
	validator *validator.Validate
	logger    *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(
	generator generation.Generator,
	tasks Submitter,
	logger *slog.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		generator: generator,
		tasks:     tasks,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateGeneration handles POST /api/generations requests. It validates the
// request, binds the generator call into a task body, and submits it; the
// response is a 202 with the task ID since processing happens asynchronously
// and the result is delivered to the webhook URL.
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	contentReq := domain.ContentRequest{
		ContentType:  domain.ContentType(req.ContentType),
		Topic:        req.Topic,
		Instructions: req.Instructions,
	}

	// The task core treats the body as opaque; the binding of generator and
	// arguments happens here, at the HTTP boundary.
	body := func(ctx context.Context) (any, error) {
		content, err := h.generator.Generate(ctx, contentReq)
		if err != nil {
			return nil, err
		}
		return content, nil
	}

	taskID, err := h.tasks.Submit(r.Context(), req.ContentType, req.WebhookURL, body, req.Metadata)
	if err != nil {
		h.logger.Error("failed to submit generation task",
			"error", err,
			"content_type", req.ContentType)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to submit task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		TaskID: taskID,
		Status: string(task.StatusRunning),
	})
}
