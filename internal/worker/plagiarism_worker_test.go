package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentprove/assess-backend/internal/config"
	"github.com/talentprove/assess-backend/internal/plagiarism"
)

type recordingChecker struct {
	mu      sync.Mutex
	checked []uuid.UUID
	done    chan struct{}
}

func (c *recordingChecker) Check(ctx context.Context, submissionID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = append(c.checked, submissionID)
	select {
	case c.done <- struct{}{}:
	default:
	}
	return nil
}

func TestPlagiarismWorkerDelivers(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	id := uuid.New()
	task, err := json.Marshal(plagiarism.CheckTask{SubmissionID: id.String(), EnqueuedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.PlagiarismOutboxQueue, task).Err())

	checker := &recordingChecker{done: make(chan struct{}, 1)}
	w := NewPlagiarismWorker(rdb, checker, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	select {
	case <-checker.done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never delivered the task")
	}

	checker.mu.Lock()
	defer checker.mu.Unlock()
	assert.Equal(t, []uuid.UUID{id}, checker.checked)
}

func TestPlagiarismWorkerDropsInvalidPayload(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	ctx := context.Background()

	require.NoError(t, rdb.RPush(ctx, config.WorkerKey.PlagiarismOutboxQueue, "not-json").Err())
	require.NoError(t, rdb.RPush(ctx, config.WorkerKey.PlagiarismOutboxQueue, `{"submission_id":"not-a-uuid"}`).Err())

	checker := &recordingChecker{done: make(chan struct{}, 1)}
	w := NewPlagiarismWorker(rdb, checker, zerolog.Nop())

	w.processNext(ctx)
	w.processNext(ctx)

	llen, err := rdb.LLen(ctx, config.WorkerKey.PlagiarismOutboxQueue).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), llen, "bad payloads are dropped, not requeued")

	checker.mu.Lock()
	defer checker.mu.Unlock()
	assert.Empty(t, checker.checked)
}
