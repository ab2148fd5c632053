package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentprove/assess-backend/internal/clock"
	"github.com/talentprove/assess-backend/internal/config"
	"github.com/talentprove/assess-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Business outcome errors, mapped to API error codes by the handlers.
var (
	ErrAssessmentNotAvailable = errors.New("assessment is not available")
	ErrNotInvited             = errors.New("candidate is not invited to this assessment")
	ErrInvalidAccessCode      = errors.New("invalid access code")
	ErrRetakeNotAllowed       = errors.New("assessment already completed, retake not allowed")
	ErrSubmissionNotActive    = errors.New("submission is not in progress")
	ErrAlreadySubmitted       = errors.New("submission already finalized")
	ErrTimeExpired            = errors.New("time has expired")
	ErrSectionNotFound        = errors.New("section does not belong to this assessment")
	ErrAnswerTargetMissing    = errors.New("exactly one of question_id or problem_id required")
	ErrNotOwner               = errors.New("submission belongs to another candidate")
)

// AssessmentProvider is the read-only configuration lookup for an attempt.
// Configuration is assumed immutable for the lifetime of the attempt.
type AssessmentProvider interface {
	GetWithConfig(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	GetInvite(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Invite, error)
}

// SubmissionStore is the durable record of attempts.
type SubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	GetByAssessmentAndCandidate(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Submission, error)
	Create(ctx context.Context, sub *model.Submission) error
	UpdateTimerState(ctx context.Context, sub *model.Submission) error
	Finalize(ctx context.Context, sub *model.Submission) error
	UpdateVerdict(ctx context.Context, id uuid.UUID, analytics *model.Analytics) error
}

// AnswerStore is the per-(submission, question-or-problem) answer ledger.
type AnswerStore interface {
	GetForTarget(ctx context.Context, submissionID uuid.UUID, questionID, problemID *uuid.UUID) (*model.Answer, error)
	Upsert(ctx context.Context, ans *model.Answer) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*model.Answer, error)
}

// PlagiarismNotifier queues a fire-and-forget plagiarism check after submit.
type PlagiarismNotifier interface {
	EnqueueCheck(ctx context.Context, submissionID uuid.UUID) error
}

// AttemptService drives a candidate's attempt: start, section navigation,
// time-guarded answer writes, and the terminal submit transition.
type AttemptService struct {
	assessments AssessmentProvider
	submissions SubmissionStore
	answers     AnswerStore
	notifier    PlagiarismNotifier
	locker      *SubmissionLocker
	clk         clock.Clock
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	assessments AssessmentProvider,
	submissions SubmissionStore,
	answers AnswerStore,
	notifier PlagiarismNotifier,
	clk clock.Clock,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		assessments: assessments,
		submissions: submissions,
		answers:     answers,
		notifier:    notifier,
		locker:      NewSubmissionLocker(),
		clk:         clk,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartAttempt opens (or idempotently returns) the candidate's submission
// for an assessment. A completed submission rejects the retake.
func (s *AttemptService) StartAttempt(ctx context.Context, assessmentID uuid.UUID, candidateID int, accessCode string) (*model.Submission, error) {
	assessment, err := s.assessments.GetWithConfig(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotAvailable
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.Status != model.AssessmentStatusPublished {
		return nil, ErrAssessmentNotAvailable
	}

	invite, err := s.assessments.GetInvite(ctx, assessmentID, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotInvited
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	if invite.OTPVerifiedAt == nil {
		return nil, ErrNotInvited
	}
	if bcrypt.CompareHashAndPassword([]byte(invite.AccessCodeHash), []byte(accessCode)) != nil {
		return nil, ErrInvalidAccessCode
	}

	existing, err := s.submissions.GetByAssessmentAndCandidate(ctx, assessmentID, candidateID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing submission: %w", err)
	}
	if existing != nil {
		if existing.Status.Completed() {
			return nil, ErrRetakeNotAllowed
		}
		// Already in progress. Make sure the start-time cache is warm
		// (a refresh or a second device should not reset anything).
		s.cacheStart(ctx, existing)
		return existing, nil
	}

	sub := &model.Submission{
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Status:       model.SubmissionStatusInProgress,
		StartedAt:    s.clk.Now(),
		SectionUsage: model.SectionUsage{},
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start detected, return the winner's row.
			existing, fetchErr := s.submissions.GetByAssessmentAndCandidate(ctx, assessmentID, candidateID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, fetch failed: %w", fetchErr)
			}
			if existing.Status.Completed() {
				return nil, ErrRetakeNotAllowed
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.cacheStart(ctx, sub)
	return sub, nil
}

// EnterSection makes sectionID the running section, freezing the previous
// one's elapsed time. Re-entering the running section is a no-op.
func (s *AttemptService) EnterSection(ctx context.Context, submissionID uuid.UUID, candidateID int, sectionID uuid.UUID) (*TimerSnapshot, error) {
	unlock := s.locker.Lock(submissionID)
	defer unlock()

	sub, assessment, err := s.loadActive(ctx, submissionID, candidateID)
	if err != nil {
		return nil, err
	}
	if assessment.SectionByID(sectionID) == nil {
		return nil, ErrSectionNotFound
	}

	now := s.clk.Now()
	if enterSection(sub, sectionID, now) {
		if err := s.submissions.UpdateTimerState(ctx, sub); err != nil {
			return nil, fmt.Errorf("persist timer state: %w", err)
		}
	}

	snap := BuildTimerSnapshot(assessment, sub, now)
	return &snap, nil
}

// GetTimer returns the point-in-time timer snapshot. It takes no lock;
// concurrent writers may move the clock underneath it, which is fine for
// a polled display. GLOBAL-mode attempts are served from the Redis start
// cache when warm, falling back to PostgreSQL with self-heal.
func (s *AttemptService) GetTimer(ctx context.Context, submissionID uuid.UUID, candidateID int) (*TimerSnapshot, error) {
	now := s.clk.Now()

	if snap, ok := s.timerFromCache(ctx, submissionID, candidateID, now); ok {
		return snap, nil
	}

	sub, err := s.loadOwned(ctx, submissionID, candidateID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessments.GetWithConfig(ctx, sub.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	if assessment.TimeMode == model.TimeModeGlobal && sub.Status == model.SubmissionStatusInProgress {
		s.cacheStart(ctx, sub) // self-heal after a cache miss
	}

	snap := BuildTimerSnapshot(assessment, sub, now)
	return &snap, nil
}

// SaveAnswer applies a partial answer payload through the time guard.
// Late writes (past limit + grace) are rejected without any write.
func (s *AttemptService) SaveAnswer(ctx context.Context, submissionID uuid.UUID, candidateID int, sectionID uuid.UUID, req *model.SaveAnswerRequest) (*model.Answer, error) {
	unlock := s.locker.Lock(submissionID)
	defer unlock()

	sub, assessment, err := s.loadActive(ctx, submissionID, candidateID)
	if err != nil {
		return nil, err
	}
	return s.saveAnswerLocked(ctx, sub, assessment, sectionID, req)
}

// saveAnswerLocked is the shared save path; callers hold the submission lock.
func (s *AttemptService) saveAnswerLocked(ctx context.Context, sub *model.Submission, assessment *model.Assessment, sectionID uuid.UUID, req *model.SaveAnswerRequest) (*model.Answer, error) {
	sec := assessment.SectionByID(sectionID)
	if sec == nil {
		return nil, ErrSectionNotFound
	}
	if !req.HasTarget() {
		return nil, ErrAnswerTargetMissing
	}

	now := s.clk.Now()
	if err := checkTimeGuard(assessment, sub, sectionID, now); err != nil {
		return nil, err
	}

	ans, err := s.answers.GetForTarget(ctx, sub.ID, req.QuestionID, req.ProblemID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	if ans == nil {
		ans = &model.Answer{
			SubmissionID: sub.ID,
			SectionID:    sectionID,
			QuestionID:   req.QuestionID,
			ProblemID:    req.ProblemID,
			Status:       model.AnswerStatusAttempted,
			MaxMarks:     resolveMaxMarks(sec, req),
		}
	}

	if req.Selected != nil {
		ans.SelectedAnswer = req.Selected
	}
	if req.Code != nil {
		ans.Code = req.Code
	}
	if req.Language != nil {
		ans.Language = req.Language
	}
	ans.TimeSpentSec += req.TimeSpentSec
	if req.MaxMarks != nil {
		ans.MaxMarks = *req.MaxMarks
	}

	if req.MarkedForReview != nil {
		if *req.MarkedForReview {
			ans.Status = model.AnswerStatusMarkedForReview
		} else {
			ans.Status = model.AnswerStatusAttempted
		}
	}

	// A trusted client may pre-score; the engine stores the marks as-is
	// and submit-time evaluation skips this answer.
	if req.MarksObtained != nil {
		ans.MarksObtained = req.MarksObtained
		ans.Status = model.AnswerStatusEvaluated
	}

	if err := s.answers.Upsert(ctx, ans); err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return ans, nil
}

// resolveMaxMarks picks the max marks for a new answer: client payload
// first, then configuration, then a type-based fallback.
func resolveMaxMarks(sec *model.Section, req *model.SaveAnswerRequest) float64 {
	if req.MaxMarks != nil && *req.MaxMarks > 0 {
		return *req.MaxMarks
	}
	if req.QuestionID != nil {
		if q := sec.QuestionByID(*req.QuestionID); q != nil && q.Marks > 0 {
			return q.Marks
		}
		if sec.MarksPerQuestion > 0 {
			return sec.MarksPerQuestion
		}
		return 1
	}
	if p := sec.ProblemByID(*req.ProblemID); p != nil && p.Marks > 0 {
		return p.Marks
	}
	return 100
}

// SaveCodingResult records a judged run for a coding problem, converting
// the judge's 0–100 percentage into absolute marks for the problem's
// allocation in its section-problem link.
func (s *AttemptService) SaveCodingResult(ctx context.Context, submissionID uuid.UUID, candidateID int, req *model.SaveCodingResultRequest) (*model.Answer, error) {
	unlock := s.locker.Lock(submissionID)
	defer unlock()

	sub, assessment, err := s.loadActive(ctx, submissionID, candidateID)
	if err != nil {
		return nil, err
	}

	sec, link := findProblem(assessment, req.ProblemID)
	if sec == nil {
		return nil, ErrSectionNotFound
	}
	allocated := float64(model.DefaultProblemMarks)
	if link.Marks > 0 {
		allocated = link.Marks
	}

	now := s.clk.Now()
	if err := checkTimeGuard(assessment, sub, sec.ID, now); err != nil {
		return nil, err
	}

	ans, err := s.answers.GetForTarget(ctx, sub.ID, nil, &req.ProblemID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	if ans == nil {
		pid := req.ProblemID
		ans = &model.Answer{
			SubmissionID: sub.ID,
			SectionID:    sec.ID,
			ProblemID:    &pid,
		}
	}

	marks, isCorrect := ConvertJudgeScore(req.Score, allocated)

	ans.Code = &req.Code
	ans.Language = &req.Language
	ans.MaxMarks = allocated
	ans.MarksObtained = &marks
	ans.IsCorrect = &isCorrect
	ans.Status = model.AnswerStatusEvaluated
	ans.CodingResult = &model.CodingResult{
		PassedTests:   req.PassedTests,
		TotalTests:    req.TotalTests,
		Status:        req.Status,
		Score:         req.Score,
		SampleResults: req.SampleResults,
	}

	if err := s.answers.Upsert(ctx, ans); err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return ans, nil
}

// Submit is the terminal transition: it replays any buffered answers,
// evaluates what still needs marks, aggregates scores, and freezes the
// submission. Calling it again on a finalized submission fails with
// ErrAlreadySubmitted and mutates nothing.
func (s *AttemptService) Submit(ctx context.Context, submissionID uuid.UUID, candidateID int, req *model.SubmitRequest) (*model.Submission, error) {
	unlock := s.locker.Lock(submissionID)
	defer unlock()

	sub, err := s.loadOwned(ctx, submissionID, candidateID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Completed() {
		return nil, ErrAlreadySubmitted
	}

	assessment, err := s.assessments.GetWithConfig(ctx, sub.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	// Replay the client's final buffered batch. Individual failures are
	// logged and skipped; partial credit beats a lost submission.
	for i := range req.Answers {
		buf := &req.Answers[i]
		if _, err := s.saveAnswerLocked(ctx, sub, assessment, buf.SectionID, &buf.SaveAnswerRequest); err != nil {
			s.log.Warn().Err(err).
				Str("submission_id", sub.ID.String()).
				Int("buffered_index", i).
				Msg("buffered answer rejected during submit")
		}
	}

	now := s.clk.Now()
	freezeRunningSection(sub, now)

	answers, err := s.answers.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	for _, ans := range answers {
		if err := evaluateAnswer(assessment, ans); err != nil {
			s.log.Warn().Err(err).
				Str("submission_id", sub.ID.String()).
				Str("answer_id", ans.ID.String()).
				Msg("answer evaluation failed, skipping")
			continue
		}
		if err := s.answers.Upsert(ctx, ans); err != nil {
			s.log.Warn().Err(err).
				Str("answer_id", ans.ID.String()).
				Msg("persist evaluated answer failed, skipping")
		}
	}

	report := aggregateScores(assessment, sub, answers, now)

	endReason := "submitted"
	if req.IsAutoSubmit {
		endReason = "auto_submitted"
	}
	report.Analytics.EndReason = endReason

	sub.Status = model.SubmissionStatusEvaluated
	sub.SubmittedAt = &now
	sub.TotalScore = report.TotalScore
	sub.MaxScore = report.MaxScore
	sub.Percentage = report.Percentage
	sub.SectionScores = report.SectionScores
	sub.Analytics = &report.Analytics

	// The only fatal condition: the final row must persist.
	if err := s.submissions.Finalize(ctx, sub); err != nil {
		return nil, fmt.Errorf("finalize submission: %w", err)
	}

	s.dropStartCache(ctx, sub.ID)

	// Fire-and-forget: plagiarism hand-off must never block or fail the
	// submit. The outbox worker owns retries.
	if err := s.notifier.EnqueueCheck(ctx, sub.ID); err != nil {
		s.log.Error().Err(err).
			Str("submission_id", sub.ID.String()).
			Msg("plagiarism enqueue failed")
	}

	return sub, nil
}

// OverrideVerdict merges an organizer's partial verdict patch into the
// frozen analytics without touching the computed score.
func (s *AttemptService) OverrideVerdict(ctx context.Context, submissionID uuid.UUID, evaluatorID int, patch *model.VerdictPatch) (*model.Submission, error) {
	unlock := s.locker.Lock(submissionID)
	defer unlock()

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if !sub.Status.Completed() || sub.Analytics == nil {
		return nil, ErrSubmissionNotActive
	}

	v := &sub.Analytics.Verdict
	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if patch.AdjustedScore != nil {
		v.AdjustedScore = patch.AdjustedScore
	}
	if patch.ViolationPenalty != nil {
		v.ViolationPenalty = patch.ViolationPenalty
	}
	if patch.Notes != nil {
		v.Notes = *patch.Notes
	}
	now := s.clk.Now()
	v.EvaluatorID = &evaluatorID
	v.EvaluatedAt = &now

	if err := s.submissions.UpdateVerdict(ctx, sub.ID, sub.Analytics); err != nil {
		return nil, fmt.Errorf("update verdict: %w", err)
	}
	return sub, nil
}

// CheckActive reports whether the candidate's submission is still in
// progress. Used by the timer stream to decide when to close.
func (s *AttemptService) CheckActive(ctx context.Context, submissionID uuid.UUID, candidateID int) error {
	sub, err := s.loadOwned(ctx, submissionID, candidateID)
	if err != nil {
		return err
	}
	if sub.Status != model.SubmissionStatusInProgress {
		return ErrSubmissionNotActive
	}
	return nil
}

// loadOwned fetches a submission and verifies candidate ownership.
func (s *AttemptService) loadOwned(ctx context.Context, submissionID uuid.UUID, candidateID int) (*model.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub.CandidateID != candidateID {
		return nil, ErrNotOwner
	}
	return sub, nil
}

// loadActive fetches an owned submission plus its assessment config and
// requires the attempt to still be IN_PROGRESS.
func (s *AttemptService) loadActive(ctx context.Context, submissionID uuid.UUID, candidateID int) (*model.Submission, *model.Assessment, error) {
	sub, err := s.loadOwned(ctx, submissionID, candidateID)
	if err != nil {
		return nil, nil, err
	}
	if sub.Status != model.SubmissionStatusInProgress {
		return nil, nil, ErrSubmissionNotActive
	}
	assessment, err := s.assessments.GetWithConfig(ctx, sub.AssessmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get assessment: %w", err)
	}
	return sub, assessment, nil
}

// findProblem locates the section-problem link for a problem id.
func findProblem(assessment *model.Assessment, problemID uuid.UUID) (*model.Section, *model.SectionProblem) {
	for i := range assessment.Sections {
		if p := assessment.Sections[i].ProblemByID(problemID); p != nil {
			return &assessment.Sections[i], p
		}
	}
	return nil, nil
}

// ─── Start-time cache (GLOBAL-mode fast path) ───────────────────────────

// cacheStart stores the attempt's identity and start time so GLOBAL-mode
// timer polls can skip the submission row entirely.
func (s *AttemptService) cacheStart(ctx context.Context, sub *model.Submission) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.SubmissionStartKey(sub.ID.String())
	err := s.rdb.HSet(ctx, key, map[string]any{
		"candidate_id":  sub.CandidateID,
		"assessment_id": sub.AssessmentID.String(),
		"started_at":    sub.StartedAt.Unix(),
	}).Err()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to cache submission start time")
	}
}

func (s *AttemptService) dropStartCache(ctx context.Context, submissionID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, config.CacheKey.SubmissionStartKey(submissionID.String())).Err()
}

// timerFromCache builds a GLOBAL-mode snapshot from the Redis start cache.
// Returns false on any miss or parse issue; the caller falls back to the
// database, which is the source of truth.
func (s *AttemptService) timerFromCache(ctx context.Context, submissionID uuid.UUID, candidateID int, now time.Time) (*TimerSnapshot, bool) {
	if s.rdb == nil {
		return nil, false
	}
	key := config.CacheKey.SubmissionStartKey(submissionID.String())
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}

	cachedCandidate, err := strconv.Atoi(fields["candidate_id"])
	if err != nil || cachedCandidate != candidateID {
		return nil, false
	}
	assessmentID, err := uuid.Parse(fields["assessment_id"])
	if err != nil {
		return nil, false
	}
	startUnix, err := strconv.ParseInt(fields["started_at"], 10, 64)
	if err != nil {
		return nil, false
	}

	assessment, err := s.assessments.GetWithConfig(ctx, assessmentID)
	if err != nil || assessment.TimeMode != model.TimeModeGlobal {
		// SECTION mode needs the usage map; only GLOBAL can skip the row.
		return nil, false
	}

	sub := &model.Submission{
		ID:           submissionID,
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Status:       model.SubmissionStatusInProgress,
		StartedAt:    time.Unix(startUnix, 0),
	}
	snap := BuildTimerSnapshot(assessment, sub, now)
	return &snap, true
}
