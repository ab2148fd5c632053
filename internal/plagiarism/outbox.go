package plagiarism

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/talentprove/assess-backend/internal/config"
)

// CheckTask is one queued plagiarism check request.
type CheckTask struct {
	SubmissionID string    `json:"submission_id"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// Outbox appends check tasks to the Redis outbound queue. Submit writes
// here instead of calling the collaborator inline, decoupling the failure
// domains: a dead plagiarism service can never fail a submit.
type Outbox struct {
	rdb *redis.Client
}

// NewOutbox creates a queue producer.
func NewOutbox(rdb *redis.Client) *Outbox {
	return &Outbox{rdb: rdb}
}

// EnqueueCheck pushes a check task onto the outbox queue.
func (o *Outbox) EnqueueCheck(ctx context.Context, submissionID uuid.UUID) error {
	task := CheckTask{
		SubmissionID: submissionID.String(),
		EnqueuedAt:   time.Now(),
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := o.rdb.RPush(ctx, config.WorkerKey.PlagiarismOutboxQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}
