package control

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fotoserve/queuepulse/pkg/core"
	"github.com/fotoserve/queuepulse/pkg/fetch"
	"github.com/fotoserve/queuepulse/pkg/ledger"
)

func setupControlsTest(t *testing.T, handler http.HandlerFunc) (*Controls, *ledger.GormStore) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := ledger.NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	client := fetch.NewClient(srv.URL, "tok")
	return New(client, store), store
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestControls_ValidationHappensBeforeAnyRequest(t *testing.T) {
	requests := 0
	controls, _ := setupControlsTest(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	assert.ErrorIs(t, controls.PauseQueue(ctx, "../escape"), core.ErrInvalidQueueName)
	assert.ErrorIs(t, controls.ResumeQueue(ctx, ""), core.ErrInvalidQueueName)
	assert.ErrorIs(t, controls.RetryJob(ctx, "a b"), core.ErrInvalidJobID)
	assert.ErrorIs(t, controls.CancelJob(ctx, ""), core.ErrInvalidJobID)

	assert.Equal(t, 0, requests, "invalid input must never reach the server")
}

func TestControls_PauseAndResume(t *testing.T) {
	var paths []string
	controls, _ := setupControlsTest(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, controls.PauseQueue(ctx, "thumbnails"))
	require.NoError(t, controls.ResumeQueue(ctx, "thumbnails"))

	assert.Equal(t, []string{"/jobs/thumbnails/pause", "/jobs/thumbnails/resume"}, paths)
}

func TestControls_RetryJobBumpsLedgerCount(t *testing.T) {
	controls, store := setupControlsTest(t, okHandler)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &core.FailedJobRecord{
		JobID:        "job-42",
		QueueName:    "thumbnails",
		ErrorMessage: "exif parse error",
	}))

	require.NoError(t, controls.RetryJob(ctx, "job-42"))

	got, err := store.List(ctx, ledger.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].RetryCount)
}

func TestControls_RetryJobWithoutLedgerRecordSucceeds(t *testing.T) {
	controls, _ := setupControlsTest(t, okHandler)

	// The server accepted the retry; a missing local record is not an error.
	assert.NoError(t, controls.RetryJob(context.Background(), "never-seen"))
}

func TestControls_RetryJobServerErrorSkipsLedger(t *testing.T) {
	controls, store := setupControlsTest(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "job not found", http.StatusNotFound)
	})
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &core.FailedJobRecord{
		JobID:        "job-42",
		QueueName:    "thumbnails",
		ErrorMessage: "boom",
	}))

	err := controls.RetryJob(ctx, "job-42")
	var protoErr *fetch.ProtocolError
	require.ErrorAs(t, err, &protoErr)

	got, err := store.List(ctx, ledger.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].RetryCount, "a rejected retry must not bump the count")
}

func TestControls_RecordAndListFailures(t *testing.T) {
	controls, _ := setupControlsTest(t, okHandler)
	ctx := context.Background()

	require.NoError(t, controls.RecordFailure(ctx, &core.FailedJobRecord{
		JobID:        "job-1",
		QueueName:    "video-transcode",
		ErrorMessage: "codec unsupported",
	}))

	err := controls.RecordFailure(ctx, &core.FailedJobRecord{JobID: "job-2", QueueName: "bad name"})
	assert.ErrorIs(t, err, core.ErrInvalidQueueName)

	got, err := controls.ListFailures(ctx, ledger.Query{QueueName: "video-transcode"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "job-1", got[0].JobID)

	_, err = controls.ListFailures(ctx, ledger.Query{QueueName: "../x"})
	assert.ErrorIs(t, err, core.ErrInvalidQueueName)
}

func TestControls_DeleteFailure(t *testing.T) {
	controls, store := setupControlsTest(t, okHandler)
	ctx := context.Background()

	entry := &core.FailedJobRecord{JobID: "job-9", QueueName: "q", ErrorMessage: "x"}
	require.NoError(t, store.Record(ctx, entry))

	require.NoError(t, controls.DeleteFailure(ctx, entry.ID))
	assert.ErrorIs(t, controls.DeleteFailure(ctx, entry.ID), core.ErrRecordNotFound)
}

func TestControls_Ping(t *testing.T) {
	controls, _ := setupControlsTest(t, okHandler)
	assert.NoError(t, controls.Ping(context.Background()))
}
