package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentprove/assess-backend/internal/model"
)

// SubmissionResult is one row of the organizer results listing.
type SubmissionResult struct {
	SubmissionID uuid.UUID              `json:"submission_id"`
	CandidateID  int                    `json:"candidate_id"`
	Status       model.SubmissionStatus `json:"status"`
	TotalScore   float64                `json:"total_score"`
	MaxScore     float64                `json:"max_score"`
	Percentage   float64                `json:"percentage"`
	StartedAt    time.Time              `json:"started_at"`
	SubmittedAt  *time.Time             `json:"submitted_at"`
}

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, assessment_id, candidate_id, status, started_at, submitted_at,
	current_section_id, section_started_at, section_usage,
	total_score, max_score, percentage, section_scores, analytics,
	created_at, updated_at`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(
		&s.ID, &s.AssessmentID, &s.CandidateID, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.CurrentSectionID, &s.SectionStartedAt, &s.SectionUsage,
		&s.TotalScore, &s.MaxScore, &s.Percentage, &s.SectionScores, &s.Analytics,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.SectionUsage == nil {
		s.SectionUsage = model.SectionUsage{}
	}
	return s, nil
}

// GetByID retrieves a submission by id.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

// GetByAssessmentAndCandidate retrieves the single submission for a
// (assessment, candidate) pair.
func (r *SubmissionRepository) GetByAssessmentAndCandidate(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE assessment_id = $1 AND candidate_id = $2`, assessmentID, candidateID))
}

// Create inserts a new submission. The unique (assessment_id, candidate_id)
// constraint makes a concurrent duplicate insert surface as pgx.ErrNoRows,
// which callers treat as "fetch the winner".
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assessment_id, candidate_id, status, started_at, section_usage)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (assessment_id, candidate_id) DO NOTHING
		 RETURNING id, started_at, created_at, updated_at`,
		s.AssessmentID, s.CandidateID, model.SubmissionStatusInProgress, s.StartedAt, s.SectionUsage,
	).Scan(&s.ID, &s.StartedAt, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateTimerState persists the section navigation state of an attempt.
// Guarded on IN_PROGRESS so a finalized row can never regain a running clock.
func (r *SubmissionRepository) UpdateTimerState(ctx context.Context, s *model.Submission) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET current_section_id = $1, section_started_at = $2, section_usage = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		s.CurrentSectionID, s.SectionStartedAt, s.SectionUsage, s.ID, model.SubmissionStatusInProgress)
	return err
}

// Finalize freezes the submission: status, scores, and analytics in one
// conditional update. pgx.ErrNoRows signals the row was already finalized.
func (r *SubmissionRepository) Finalize(ctx context.Context, s *model.Submission) error {
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE submissions
		 SET status = $1, submitted_at = $2,
		     current_section_id = NULL, section_started_at = NULL, section_usage = $3,
		     total_score = $4, max_score = $5, percentage = $6,
		     section_scores = $7, analytics = $8, updated_at = NOW()
		 WHERE id = $9 AND status = $10
		 RETURNING updated_at`,
		s.Status, s.SubmittedAt, s.SectionUsage,
		s.TotalScore, s.MaxScore, s.Percentage,
		s.SectionScores, s.Analytics, s.ID, model.SubmissionStatusInProgress,
	).Scan(&updatedAt)
	if err != nil {
		return err
	}
	s.UpdatedAt = updatedAt
	return nil
}

// UpdateVerdict persists a verdict override into the frozen analytics.
func (r *SubmissionRepository) UpdateVerdict(ctx context.Context, id uuid.UUID, analytics *model.Analytics) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions SET analytics = $1, updated_at = NOW() WHERE id = $2`,
		analytics, id)
	return err
}

// ListByAssessment retrieves paginated submission results for an assessment.
func (r *SubmissionRepository) ListByAssessment(ctx context.Context, assessmentID uuid.UUID, page, perPage int) ([]SubmissionResult, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE assessment_id = $1`, assessmentID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, candidate_id, status, total_score, max_score, percentage, started_at, submitted_at
		 FROM submissions
		 WHERE assessment_id = $1
		 ORDER BY started_at ASC
		 LIMIT $2 OFFSET $3`, assessmentID, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SubmissionResult
	for rows.Next() {
		var sr SubmissionResult
		if err := rows.Scan(&sr.SubmissionID, &sr.CandidateID, &sr.Status, &sr.TotalScore,
			&sr.MaxScore, &sr.Percentage, &sr.StartedAt, &sr.SubmittedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, sr)
	}
	return results, total, rows.Err()
}
