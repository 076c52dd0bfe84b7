package queuepulse_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotoserve/queuepulse"
	"github.com/fotoserve/queuepulse/pkg/poll"
	"github.com/fotoserve/queuepulse/pkg/rate"
)

// queueServer is a minimal job-queue API stub whose counts can be updated
// between poll cycles.
type queueServer struct {
	mu      sync.Mutex
	waiting int
	active  int
	failed  int
}

func (s *queueServer) set(waiting, active, failed int) {
	s.mu.Lock()
	s.waiting, s.active, s.failed = waiting, active, failed
	s.mu.Unlock()
}

func (s *queueServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			w.WriteHeader(http.StatusOK)
			return
		}
		s.mu.Lock()
		body := fmt.Sprintf(`{
			"thumbnails": {
				"isPaused": false,
				"isActive": true,
				"counts": {"active": %d, "completed": 0, "failed": %d, "delayed": 0, "waiting": %d, "paused": 0}
			}
		}`, s.active, s.failed, s.waiting)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func recvIntegrationStatus(t *testing.T, ch <-chan queuepulse.Status) queuepulse.Status {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a published status")
		return queuepulse.Status{}
	}
}

func TestIntegration_TwoCyclesDeriveRateAndPersistMetrics(t *testing.T) {
	backend := &queueServer{}
	backend.set(100, 5, 2)

	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	_, metricStore, _ := setupTestStores(t)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := queuepulse.NewClient(srv.URL, "token")
	estimator := queuepulse.NewEstimator(rate.WithClock(func() time.Time { return clock }))
	poller := queuepulse.NewPoller(client, estimator, poll.WithMetricStore(metricStore))

	updates := poller.Subscribe()
	defer poller.Unsubscribe(updates)
	ctx := context.Background()

	// Cycle one bootstraps the estimator.
	poller.Refresh(ctx)
	first := recvIntegrationStatus(t, updates)
	require.True(t, first.Connected)
	assert.Equal(t, 5, first.Stats.ActiveWorkers)
	assert.Equal(t, int64(0), first.Stats.JobsProcessedSinceStart)
	require.Len(t, first.Snapshots, 1)
	assert.Equal(t, 100, first.Snapshots[0].WaitingCount)

	// One minute later the waiting count dropped by 20.
	backend.set(80, 5, 2)
	clock = clock.Add(time.Minute)

	poller.Refresh(ctx)
	second := recvIntegrationStatus(t, updates)
	require.True(t, second.Connected)
	assert.Equal(t, int64(20), second.Stats.JobsProcessedSinceStart)
	assert.Equal(t, float64(20), second.Stats.AverageProcessingRate)

	// Both cycles wrote their metric rows.
	rates, err := metricStore.QueryRecords(ctx, queuepulse.MetricQuery{Type: queuepulse.MetricProcessingRate})
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, float64(20), rates[0].Value)

	waiting, err := metricStore.QueryRecords(ctx, queuepulse.MetricQuery{
		Type:      queuepulse.MetricQueueWaiting,
		QueueName: "thumbnails",
	})
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, float64(80), waiting[0].Value)
	assert.Equal(t, float64(100), waiting[1].Value)
}

func TestIntegration_ServerOutageAndRecovery(t *testing.T) {
	backend := &queueServer{}
	backend.set(50, 3, 0)

	var failing bool
	var mu sync.Mutex
	upstream := backend.handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		down := failing
		mu.Unlock()
		if down {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		upstream(w, r)
	}))
	defer srv.Close()

	client := queuepulse.NewClient(srv.URL, "token")
	poller := queuepulse.NewPoller(client, queuepulse.NewEstimator())
	updates := poller.Subscribe()
	defer poller.Unsubscribe(updates)
	ctx := context.Background()

	poller.Refresh(ctx)
	assert.True(t, recvIntegrationStatus(t, updates).Connected)

	mu.Lock()
	failing = true
	mu.Unlock()

	poller.Refresh(ctx)
	down := recvIntegrationStatus(t, updates)
	assert.False(t, down.Connected)
	assert.Contains(t, down.Error, "504")

	mu.Lock()
	failing = false
	mu.Unlock()

	poller.Refresh(ctx)
	recovered := recvIntegrationStatus(t, updates)
	assert.True(t, recovered.Connected)
	assert.Empty(t, recovered.Error)
}

func TestIntegration_ControlsAgainstStubServer(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, _, failureStore := setupTestStores(t)

	client := queuepulse.NewClient(srv.URL, "token")
	controls := queuepulse.NewControls(client, failureStore)
	ctx := context.Background()

	require.NoError(t, controls.RecordFailure(ctx, &queuepulse.FailedJobRecord{
		JobID:        "job-42",
		QueueName:    "thumbnails",
		ErrorMessage: "exif parse error",
	}))

	require.NoError(t, controls.PauseQueue(ctx, "thumbnails"))
	require.NoError(t, controls.RetryJob(ctx, "job-42"))
	require.NoError(t, controls.ResumeQueue(ctx, "thumbnails"))

	failures, err := controls.ListFailures(ctx, queuepulse.FailureQuery{QueueName: "thumbnails"})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].RetryCount)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /jobs/thumbnails/pause",
		"POST /jobs/job-42/retry",
		"POST /jobs/thumbnails/resume",
	}, paths)
}
