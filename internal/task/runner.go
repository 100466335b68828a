package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Body is the opaque unit of work a task executes. The runner places no
// constraint on its internals beyond that it must eventually return a result
// or an error; no timeout is imposed on it. The context is the runner's
// lifetime context, cancelled on Stop.
type Body func(ctx context.Context) (any, error)

// Deliverer posts a terminal-state payload to a webhook URL. Delivery
// failures are the deliverer's to absorb; the runner never changes a task's
// terminal status based on the returned error.
type Deliverer interface {
	Deliver(ctx context.Context, url, taskID string, payload any) error
}

// ResultPayload is the JSON document POSTed to the caller's webhook URL when
// a task reaches a terminal state.
type ResultPayload struct {
	TaskID         string         `json:"task_id"`
	Status         Status         `json:"status"`
	Success        bool           `json:"success"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime float64        `json:"processing_time"`
	CompletedAt    string         `json:"completed_at,omitempty"`
	FailedAt       string         `json:"failed_at,omitempty"`
	Metadata       map[string]any `json:"metadata"`
}

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// Retention defines how long a terminal record stays in the registry
	// before the reaper removes it.
	Retention time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Retention: time.Hour,
	}
}

// Runner executes task bodies without blocking submitters and drives each
// record through its state machine. Every task runs on its own goroutine,
// supervised through a WaitGroup and a panic guard so a crash inside one
// task body can never take down the process or abort other tasks.
type Runner struct {
	registry  *Registry
	deliverer Deliverer
	config    RunnerConfig
	logger    *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	reaperWG   sync.WaitGroup
}

// NewRunner creates a Runner bound to the given registry and deliverer.
func NewRunner(
	registry *Registry,
	deliverer Deliverer,
	config RunnerConfig,
	logger *slog.Logger,
) *Runner {
	if config.Retention <= 0 {
		config.Retention = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		registry:   registry,
		deliverer:  deliverer,
		config:     config,
		logger:     logger,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Submit registers a new task and launches its body on a dedicated goroutine.
// It returns the generated task ID immediately; it never blocks on the body.
// The prefix names the task category and becomes the leading segment of the
// task ID. Metadata is echoed back verbatim in the webhook payload and in
// status queries.
func (r *Runner) Submit(
	ctx context.Context,
	prefix string,
	webhookURL string,
	body Body,
	metadata map[string]any,
) (string, error) {
	id := NewTaskID(prefix)

	rec := &Record{
		TaskID:     id,
		Status:     StatusRunning,
		WebhookURL: webhookURL,
		StartedAt:  time.Now().UTC(),
		Metadata:   metadata,
	}
	if err := r.registry.Put(id, rec); err != nil {
		return "", fmt.Errorf("failed to register task: %w", err)
	}

	r.logger.Info("task submitted",
		"task_id", id,
		"webhook_url", webhookURL)

	r.wg.Add(1)
	go r.run(id, webhookURL, body)

	return id, nil
}

// Stop cancels the runner's context and waits for in-flight task goroutines,
// delivery goroutines, and pending reapers to exit.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.reaperWG.Wait()
}

// run owns the full mutation sequence for one task: it is the record's single
// writer from the processing transition through the terminal state.
func (r *Runner) run(id, webhookURL string, body Body) {
	defer r.wg.Done()

	logger := r.logger.With("task_id", id)

	defer func() {
		// execute already converts body panics into errors; this guard only
		// catches bugs in the runner's own bookkeeping.
		if p := recover(); p != nil {
			logger.Error("task runner goroutine panicked", "panic", p)
		}
	}()

	if err := r.registry.Update(id, func(rec *Record) {
		rec.Status = StatusProcessing
	}); err != nil {
		logger.Error("failed to mark task as processing", "error", err)
		return
	}

	logger.Info("processing task")

	start := time.Now()
	result, err := r.execute(body)
	elapsed := time.Since(start).Seconds()
	now := time.Now().UTC()

	var updateErr error
	if err != nil {
		logger.Error("task failed",
			"error", err,
			"processing_time", elapsed)
		updateErr = r.registry.Update(id, func(rec *Record) {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			rec.FailedAt = &now
			rec.ProcessingTime = elapsed
		})
	} else {
		logger.Info("task completed",
			"processing_time", elapsed)
		updateErr = r.registry.Update(id, func(rec *Record) {
			rec.Status = StatusCompleted
			rec.Result = result
			rec.CompletedAt = &now
			rec.ProcessingTime = elapsed
		})
	}
	if updateErr != nil {
		logger.Error("failed to record task outcome", "error", updateErr)
		return
	}

	rec, ok := r.registry.Get(id)
	if !ok {
		logger.Error("task record vanished before delivery")
		return
	}
	payload := buildPayload(rec)

	// Delivery runs on its own goroutine so reaper scheduling is never gated
	// on the webhook endpoint being reachable.
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.deliverer.Deliver(r.ctx, webhookURL, id, payload); err != nil {
			logger.Warn("webhook delivery abandoned", "error", err)
		}
	}()

	r.ScheduleCleanup(id, r.config.Retention)
}

// execute invokes the task body, converting a panic into an ordinary error so
// failures inside caller-supplied code surface as a failed terminal state
// rather than crashing the process.
func (r *Runner) execute(body Body) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task body panicked: %v", p)
		}
	}()
	return body(r.ctx)
}

// ScheduleCleanup removes the task's registry entry after the delay elapses.
// The removal is idempotent, so scheduling cleanup twice for the same ID is
// harmless. Pending cleanups are abandoned when the runner stops.
func (r *Runner) ScheduleCleanup(id string, delay time.Duration) {
	r.reaperWG.Add(1)
	go func() {
		defer r.reaperWG.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			r.registry.Delete(id)
			r.logger.Debug("reaped task record", "task_id", id)
		case <-r.ctx.Done():
		}
	}()
}

// buildPayload projects a terminal record into the webhook document.
func buildPayload(rec *Record) ResultPayload {
	payload := ResultPayload{
		TaskID:         rec.TaskID,
		Status:         rec.Status,
		Success:        rec.Status == StatusCompleted,
		Result:         rec.Result,
		Error:          rec.Error,
		ProcessingTime: rec.ProcessingTime,
		Metadata:       rec.Metadata,
	}
	if rec.CompletedAt != nil {
		payload.CompletedAt = rec.CompletedAt.Format(time.RFC3339Nano)
	}
	if rec.FailedAt != nil {
		payload.FailedAt = rec.FailedAt.Format(time.RFC3339Nano)
	}
	return payload
}
