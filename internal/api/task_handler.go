package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nfoster/taskrelay/internal/api/shared"
	"github.com/nfoster/taskrelay/internal/task"
)

// StatusReader exposes the read-only views over the task registry.
type StatusReader interface {
	Status(id string) (task.StatusView, bool)
	Active() map[string]task.ActiveView
}

// TaskHandler handles task status query requests.
type TaskHandler struct {
	tasks  StatusReader
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks StatusReader, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// GetTask handles GET /api/tasks/{taskID} requests. A 404 covers both "never
// existed" and "already reaped"; the two are indistinguishable by design.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	view, ok := h.tasks.Status(taskID)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// ListActiveTasks handles GET /api/tasks requests, returning every task that
// is still running or processing.
func (h *TaskHandler) ListActiveTasks(w http.ResponseWriter, r *http.Request) {
	active := h.tasks.Active()
	shared.RespondWithJSON(w, r, http.StatusOK, active)
}
