package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentprove/assess-backend/internal/model"
)

// AssessmentRepository loads assessment configuration: time mode, sections,
// questions, and coding problem links. Configuration is read-only for the
// lifetime of an attempt.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// GetWithConfig retrieves an assessment with its full section/question/problem
// configuration. Answer keys are resolved once here so evaluation never
// re-parses stored JSON shapes.
func (r *AssessmentRepository) GetWithConfig(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	a := &model.Assessment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, organizer_id, time_mode, duration_minutes, status, created_at, updated_at
		 FROM assessments
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.OrganizerID, &a.TimeMode, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := r.loadSections(ctx, a); err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	return a, nil
}

func (r *AssessmentRepository) loadSections(ctx context.Context, a *model.Assessment) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assessment_id, title, order_num, time_limit_minutes,
		        negative_marking_rate, marks_per_question, question_count
		 FROM sections
		 WHERE assessment_id = $1
		 ORDER BY order_num ASC`, a.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.AssessmentID, &s.Title, &s.OrderNum, &s.TimeLimitMinutes,
			&s.NegativeMarkingRate, &s.MarksPerQuestion, &s.QuestionCount); err != nil {
			return err
		}
		index[s.ID] = len(a.Sections)
		a.Sections = append(a.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := r.loadQuestions(ctx, a, index); err != nil {
		return err
	}
	return r.loadProblems(ctx, a, index)
}

func (r *AssessmentRepository) loadQuestions(ctx context.Context, a *model.Assessment, index map[uuid.UUID]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.section_id, q.text, q.type, q.options, q.correct_answer, q.marks, q.order_num
		 FROM questions q
		 JOIN sections s ON q.section_id = s.id
		 WHERE s.assessment_id = $1
		 ORDER BY q.order_num ASC`, a.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SectionID, &q.Text, &q.Type, &q.Options, &q.CorrectRaw, &q.Marks, &q.OrderNum); err != nil {
			return err
		}
		if err := q.ResolveKey(); err != nil {
			return fmt.Errorf("resolve answer key: %w", err)
		}
		if i, ok := index[q.SectionID]; ok {
			a.Sections[i].Questions = append(a.Sections[i].Questions, q)
		}
	}
	return rows.Err()
}

func (r *AssessmentRepository) loadProblems(ctx context.Context, a *model.Assessment, index map[uuid.UUID]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT sp.section_id, sp.problem_id, cp.title, sp.marks, sp.order_num
		 FROM section_problems sp
		 JOIN coding_problems cp ON sp.problem_id = cp.id
		 JOIN sections s ON sp.section_id = s.id
		 WHERE s.assessment_id = $1
		 ORDER BY sp.order_num ASC`, a.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.SectionProblem
		if err := rows.Scan(&p.SectionID, &p.ProblemID, &p.Title, &p.Marks, &p.OrderNum); err != nil {
			return err
		}
		if i, ok := index[p.SectionID]; ok {
			a.Sections[i].Problems = append(a.Sections[i].Problems, p)
		}
	}
	return rows.Err()
}

// GetInvite retrieves a candidate's invite for an assessment.
func (r *AssessmentRepository) GetInvite(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Invite, error) {
	inv := &model.Invite{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assessment_id, candidate_id, access_code_hash, otp_verified_at, created_at
		 FROM invites
		 WHERE assessment_id = $1 AND candidate_id = $2`, assessmentID, candidateID,
	).Scan(&inv.ID, &inv.AssessmentID, &inv.CandidateID, &inv.AccessCodeHash, &inv.OTPVerifiedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByOrganizer verifies ownership: returns the assessment only if it
// belongs to the given organizer.
func (r *AssessmentRepository) GetByOrganizer(ctx context.Context, id uuid.UUID, organizerID int) (*model.Assessment, error) {
	a := &model.Assessment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, organizer_id, time_mode, duration_minutes, status, created_at, updated_at
		 FROM assessments
		 WHERE id = $1 AND organizer_id = $2`, id, organizerID,
	).Scan(&a.ID, &a.Title, &a.OrganizerID, &a.TimeMode, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
