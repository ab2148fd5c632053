package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentprove/assess-backend/internal/config"
	"github.com/talentprove/assess-backend/internal/plagiarism"
)

const (
	plagiarismPollTimeout = 1 * time.Second
	plagiarismRetryDelay  = 5 * time.Second
)

// PlagiarismWorker consumes the outbox queue and delivers check requests
// to the plagiarism collaborator. Failed deliveries are requeued; the
// submit path never waits on any of this.
type PlagiarismWorker struct {
	rdb     *redis.Client
	checker plagiarism.Checker
	log     zerolog.Logger
}

// NewPlagiarismWorker creates a new PlagiarismWorker.
func NewPlagiarismWorker(rdb *redis.Client, checker plagiarism.Checker, log zerolog.Logger) *PlagiarismWorker {
	return &PlagiarismWorker{
		rdb:     rdb,
		checker: checker,
		log:     log.With().Str("component", "plagiarism_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *PlagiarismWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *PlagiarismWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, plagiarismPollTimeout, config.WorkerKey.PlagiarismOutboxQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var task plagiarism.CheckTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		w.log.Error().Err(err).Msg("Invalid task payload, dropping")
		return
	}

	submissionID, err := uuid.Parse(task.SubmissionID)
	if err != nil {
		w.log.Error().Err(err).Str("submission_id", task.SubmissionID).Msg("Invalid submission id, dropping")
		return
	}

	if err := w.checker.Check(ctx, submissionID); err != nil {
		w.log.Error().Err(err).
			Str("submission_id", task.SubmissionID).
			Msg("Delivery failed, requeueing")
		w.rdb.RPush(ctx, config.WorkerKey.PlagiarismOutboxQueue, result[1])
		time.Sleep(plagiarismRetryDelay)
		return
	}

	w.log.Debug().
		Str("submission_id", task.SubmissionID).
		Msg("Plagiarism check delivered")
}
