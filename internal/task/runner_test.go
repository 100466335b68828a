package task

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nfoster/taskrelay/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDeliverer records delivered payloads without touching the network.
type mockDeliverer struct {
	mu         sync.Mutex
	deliveries []ResultPayload
	delivered  chan ResultPayload
	block      chan struct{} // when non-nil, Deliver waits on it first
	err        error
}

func newMockDeliverer() *mockDeliverer {
	return &mockDeliverer{delivered: make(chan ResultPayload, 10)}
}

func (d *mockDeliverer) Deliver(ctx context.Context, url, taskID string, payload any) error {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p := payload.(ResultPayload)
	d.mu.Lock()
	d.deliveries = append(d.deliveries, p)
	d.mu.Unlock()
	d.delivered <- p
	return d.err
}

func (d *mockDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deliveries)
}

func newTestRunner(t *testing.T, deliverer Deliverer, retention time.Duration) (*Runner, *Registry) {
	t.Helper()

	registry := NewRegistry(newTestLogger())
	runner := NewRunner(registry, deliverer, RunnerConfig{Retention: retention}, newTestLogger())
	t.Cleanup(runner.Stop)
	return runner, registry
}

// waitForStatus polls until the task reaches the wanted status or the
// timeout elapses, asserting along the way that no illegal transition is
// ever observed.
func waitForStatus(t *testing.T, registry *Registry, id string, want Status) StatusView {
	t.Helper()

	deadline := time.After(2 * time.Second)
	var prev Status
	for {
		view, ok := registry.Status(id)
		require.True(t, ok, "task vanished while waiting for status %s", want)

		if prev != "" && prev != view.Status {
			// Statuses only ever move forward.
			assert.False(t, prev.Terminal(), "observed transition out of terminal state %s", prev)
			if prev == StatusRunning {
				assert.Equal(t, StatusProcessing, view.Status,
					"running must not skip directly to %s", view.Status)
			}
		}
		prev = view.Status

		if view.Status == want {
			return view
		}

		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s, last saw %s", want, view.Status)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestRunner_SubmitReturnsImmediately(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, time.Hour)

	body := func(ctx context.Context) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return map[string]any{"words": 5}, nil
	}

	start := time.Now()
	id, err := runner.Submit(context.Background(), "article", "http://test/ok", body, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 100*time.Millisecond, "submit must not block on the task body")

	view, ok := registry.Status(id)
	require.True(t, ok)
	assert.Contains(t, []Status{StatusRunning, StatusProcessing}, view.Status)
}

func TestRunner_SuccessfulLifecycle(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, time.Hour)

	result := map[string]any{"words": 5}
	body := func(ctx context.Context) (any, error) {
		time.Sleep(200 * time.Millisecond)
		return result, nil
	}
	metadata := map[string]any{"endpoint": "generate", "entity_id": "doc_42"}

	id, err := runner.Submit(context.Background(), "article", "http://test/ok", body, metadata)
	require.NoError(t, err)

	view := waitForStatus(t, registry, id, StatusCompleted)

	assert.Equal(t, result, view.Result)
	assert.Empty(t, view.Error)
	require.NotNil(t, view.CompletedAt)
	assert.Nil(t, view.FailedAt)
	assert.Greater(t, view.ProcessingTime, 0.0)
	assert.Equal(t, metadata, view.Metadata)

	select {
	case payload := <-deliverer.delivered:
		assert.Equal(t, id, payload.TaskID)
		assert.Equal(t, StatusCompleted, payload.Status)
		assert.True(t, payload.Success)
		assert.Equal(t, result, payload.Result)
		assert.Empty(t, payload.Error)
		assert.NotEmpty(t, payload.CompletedAt)
		assert.Empty(t, payload.FailedAt)
		assert.Equal(t, metadata, payload.Metadata)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
	assert.Equal(t, 1, deliverer.count(), "expected exactly one delivery")
}

func TestRunner_FailedLifecycle(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, time.Hour)

	body := func(ctx context.Context) (any, error) {
		return nil, errors.New("bad input")
	}

	id, err := runner.Submit(context.Background(), "summary", "http://test/fail", body, nil)
	require.NoError(t, err)

	view := waitForStatus(t, registry, id, StatusFailed)

	assert.Contains(t, view.Error, "bad input")
	assert.Nil(t, view.Result)
	require.NotNil(t, view.FailedAt)
	assert.Nil(t, view.CompletedAt)

	select {
	case payload := <-deliverer.delivered:
		assert.Equal(t, StatusFailed, payload.Status)
		assert.False(t, payload.Success)
		assert.Contains(t, payload.Error, "bad input")
		assert.Nil(t, payload.Result)
		assert.NotEmpty(t, payload.FailedAt)
		assert.Empty(t, payload.CompletedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
}

func TestRunner_PanicInBodyIsContained(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, time.Hour)

	body := func(ctx context.Context) (any, error) {
		panic("boom")
	}

	id, err := runner.Submit(context.Background(), "article", "http://test/panic", body, nil)
	require.NoError(t, err)

	view := waitForStatus(t, registry, id, StatusFailed)
	assert.Contains(t, view.Error, "boom")

	// The failure still produces a webhook notification.
	select {
	case payload := <-deliverer.delivered:
		assert.False(t, payload.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
}

func TestRunner_ReapingRemovesRecord(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, 50*time.Millisecond)

	id, err := runner.Submit(context.Background(), "article", "http://test/reap",
		func(ctx context.Context) (any, error) { return "done", nil }, nil)
	require.NoError(t, err)

	waitForStatus(t, registry, id, StatusCompleted)

	assert.Eventually(t, func() bool {
		_, ok := registry.Status(id)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "record should be reaped after the retention window")

	// A second cleanup for the same ID is a silent no-op.
	runner.ScheduleCleanup(id, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	_, ok := registry.Status(id)
	assert.False(t, ok)
}

func TestRunner_ReapingNotGatedOnDelivery(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	deliverer.block = make(chan struct{})
	runner, registry := newTestRunner(t, deliverer, 50*time.Millisecond)
	defer close(deliverer.block)

	id, err := runner.Submit(context.Background(), "article", "http://test/slow",
		func(ctx context.Context) (any, error) { return "done", nil }, nil)
	require.NoError(t, err)

	waitForStatus(t, registry, id, StatusCompleted)

	// The deliverer is still hanging, yet the reaper fires on schedule.
	assert.Eventually(t, func() bool {
		_, ok := registry.Status(id)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, deliverer.count())
}

func TestRunner_ActiveListing(t *testing.T) {
	t.Parallel()

	deliverer := newMockDeliverer()
	runner, registry := newTestRunner(t, deliverer, time.Hour)

	release := make(chan struct{})
	blocked := func(ctx context.Context) (any, error) {
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	first, err := runner.Submit(context.Background(), "article", "http://test/a", blocked,
		map[string]any{"endpoint": "generate", "entity_id": "doc_1"})
	require.NoError(t, err)
	second, err := runner.Submit(context.Background(), "summary", "http://test/b", blocked, nil)
	require.NoError(t, err)

	done, err := runner.Submit(context.Background(), "article", "http://test/c",
		func(ctx context.Context) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)
	waitForStatus(t, registry, done, StatusCompleted)

	active := registry.Active()
	assert.Len(t, active, 2)
	assert.Contains(t, active, first)
	assert.Contains(t, active, second)
	assert.NotContains(t, active, done)

	assert.Equal(t, "generate", active[first].Endpoint)
	assert.Equal(t, "doc_1", active[first].EntityID)

	close(release)
}

// TestRunner_EndToEndWebhook exercises the runner against the real delivery
// client and an httptest endpoint.
func TestRunner_EndToEndWebhook(t *testing.T) {
	t.Parallel()

	type received struct {
		payload ResultPayload
		header  http.Header
	}
	got := make(chan received, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p ResultPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got <- received{payload: p, header: r.Header.Clone()}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := webhook.NewClient(webhook.Config{
		MaxAttempts:    3,
		BaseDelay:      10 * time.Millisecond,
		AttemptTimeout: time.Second,
	}, newTestLogger())
	runner, registry := newTestRunner(t, client, time.Hour)

	metadata := map[string]any{"entity_id": "doc_7"}
	id, err := runner.Submit(context.Background(), "article", server.URL,
		func(ctx context.Context) (any, error) {
			return map[string]any{"words": float64(5)}, nil
		}, metadata)
	require.NoError(t, err)

	waitForStatus(t, registry, id, StatusCompleted)

	select {
	case r := <-got:
		assert.Equal(t, id, r.payload.TaskID)
		assert.True(t, r.payload.Success)
		assert.Equal(t, map[string]any{"words": float64(5)}, r.payload.Result)
		assert.Equal(t, metadata, r.payload.Metadata)
		assert.Equal(t, id, r.header.Get(webhook.HeaderTaskID))
		assert.NotEmpty(t, r.header.Get(webhook.HeaderSource))
		assert.Equal(t, "application/json", r.header.Get("Content-Type"))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook POST")
	}
}
