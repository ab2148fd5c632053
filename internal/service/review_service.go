package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/talentprove/assess-backend/internal/model"
	"github.com/talentprove/assess-backend/internal/repository"
)

// SubmissionDetail bundles a finished submission with its answers for review.
type SubmissionDetail struct {
	Submission *model.Submission `json:"submission"`
	Answers    []*model.Answer   `json:"answers"`
}

// ReviewService exposes the organizer's read side of submissions.
type ReviewService struct {
	assessmentRepo *repository.AssessmentRepository
	submissionRepo *repository.SubmissionRepository
	answerRepo     *repository.AnswerRepository
	log            zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	assessmentRepo *repository.AssessmentRepository,
	submissionRepo *repository.SubmissionRepository,
	answerRepo *repository.AnswerRepository,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		assessmentRepo: assessmentRepo,
		submissionRepo: submissionRepo,
		answerRepo:     answerRepo,
		log:            log.With().Str("component", "review_service").Logger(),
	}
}

// ListResults returns a page of submission results for an assessment owned
// by the organizer. Returns ErrNotOwner when the assessment belongs to
// someone else.
func (s *ReviewService) ListResults(ctx context.Context, assessmentID uuid.UUID, organizerID, page, perPage int) ([]repository.SubmissionResult, int64, error) {
	if _, err := s.assessmentRepo.GetByOrganizer(ctx, assessmentID, organizerID); err != nil {
		return nil, 0, fmt.Errorf("get assessment: %w", err)
	}

	results, total, err := s.submissionRepo.ListByAssessment(ctx, assessmentID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return results, total, nil
}

// GetSubmissionDetail returns one submission with all of its answers,
// after verifying the organizer owns the parent assessment.
func (s *ReviewService) GetSubmissionDetail(ctx context.Context, submissionID uuid.UUID, organizerID int) (*SubmissionDetail, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	if _, err := s.assessmentRepo.GetByOrganizer(ctx, sub.AssessmentID, organizerID); err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	answers, err := s.answerRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return &SubmissionDetail{Submission: sub, Answers: answers}, nil
}

// VerifyOwnership checks that the organizer owns the submission's
// assessment. Used before verdict overrides.
func (s *ReviewService) VerifyOwnership(ctx context.Context, submissionID uuid.UUID, organizerID int) error {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("get submission: %w", err)
	}
	if _, err := s.assessmentRepo.GetByOrganizer(ctx, sub.AssessmentID, organizerID); err != nil {
		return fmt.Errorf("get assessment: %w", err)
	}
	return nil
}
