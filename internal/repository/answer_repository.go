package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentprove/assess-backend/internal/model"
)

// AnswerRepository handles the answer ledger: one row per
// (submission, question) or (submission, problem).
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

const answerColumns = `id, submission_id, section_id, question_id, problem_id, status,
	selected_answer, code, language, marks_obtained, max_marks, is_correct,
	coding_result, time_spent_seconds, created_at, updated_at`

func scanAnswer(row pgx.Row) (*model.Answer, error) {
	a := &model.Answer{}
	err := row.Scan(
		&a.ID, &a.SubmissionID, &a.SectionID, &a.QuestionID, &a.ProblemID, &a.Status,
		&a.SelectedAnswer, &a.Code, &a.Language, &a.MarksObtained, &a.MaxMarks, &a.IsCorrect,
		&a.CodingResult, &a.TimeSpentSec, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetForTarget retrieves the answer for a (submission, question-or-problem)
// pair. Exactly one of questionID/problemID must be non-nil.
func (r *AnswerRepository) GetForTarget(ctx context.Context, submissionID uuid.UUID, questionID, problemID *uuid.UUID) (*model.Answer, error) {
	if questionID != nil {
		return scanAnswer(r.pool.QueryRow(ctx,
			`SELECT `+answerColumns+` FROM answers
			 WHERE submission_id = $1 AND question_id = $2`, submissionID, *questionID))
	}
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE submission_id = $1 AND problem_id = $2`, submissionID, *problemID))
}

// Upsert inserts a new answer or updates an existing one. The save path
// reads before writing under the per-submission lock, so insert vs update
// is decided by whether the answer already has an id.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	if a.ID == uuid.Nil {
		return r.pool.QueryRow(ctx,
			`INSERT INTO answers (submission_id, section_id, question_id, problem_id, status,
			                      selected_answer, code, language, marks_obtained, max_marks,
			                      is_correct, coding_result, time_spent_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING id, created_at, updated_at`,
			a.SubmissionID, a.SectionID, a.QuestionID, a.ProblemID, a.Status,
			a.SelectedAnswer, a.Code, a.Language, a.MarksObtained, a.MaxMarks,
			a.IsCorrect, a.CodingResult, a.TimeSpentSec,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE answers
		 SET status = $1, selected_answer = $2, code = $3, language = $4,
		     marks_obtained = $5, max_marks = $6, is_correct = $7,
		     coding_result = $8, time_spent_seconds = $9, updated_at = NOW()
		 WHERE id = $10`,
		a.Status, a.SelectedAnswer, a.Code, a.Language,
		a.MarksObtained, a.MaxMarks, a.IsCorrect,
		a.CodingResult, a.TimeSpentSec, a.ID)
	return err
}

// ListBySubmission retrieves all answers for a submission.
func (r *AnswerRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE submission_id = $1
		 ORDER BY created_at ASC`, submissionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
