package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentprove/assess-backend/internal/clock"
	"github.com/talentprove/assess-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// ─── In-memory fakes ────────────────────────────────────────────────

type inviteKey struct {
	assessmentID uuid.UUID
	candidateID  int
}

type fakeAssessments struct {
	byID    map[uuid.UUID]*model.Assessment
	invites map[inviteKey]*model.Invite
}

func (f *fakeAssessments) GetWithConfig(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeAssessments) GetInvite(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Invite, error) {
	inv, ok := f.invites[inviteKey{assessmentID, candidateID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inv, nil
}

type fakeSubmissions struct {
	byID          map[uuid.UUID]*model.Submission
	finalizeCount int
}

func (f *fakeSubmissions) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeSubmissions) GetByAssessmentAndCandidate(ctx context.Context, assessmentID uuid.UUID, candidateID int) (*model.Submission, error) {
	for _, s := range f.byID {
		if s.AssessmentID == assessmentID && s.CandidateID == candidateID {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissions) Create(ctx context.Context, sub *model.Submission) error {
	// Mirrors the DB unique constraint: a duplicate insert surfaces as
	// pgx.ErrNoRows so the service fetches the winner.
	for _, s := range f.byID {
		if s.AssessmentID == sub.AssessmentID && s.CandidateID == sub.CandidateID {
			return pgx.ErrNoRows
		}
	}
	sub.ID = uuid.New()
	sub.CreatedAt = sub.StartedAt
	sub.UpdatedAt = sub.StartedAt
	f.byID[sub.ID] = sub
	return nil
}

func (f *fakeSubmissions) UpdateTimerState(ctx context.Context, sub *model.Submission) error {
	return nil
}

func (f *fakeSubmissions) Finalize(ctx context.Context, sub *model.Submission) error {
	if _, ok := f.byID[sub.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.finalizeCount++
	return nil
}

func (f *fakeSubmissions) UpdateVerdict(ctx context.Context, id uuid.UUID, analytics *model.Analytics) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

type fakeAnswers struct {
	answers []*model.Answer
}

func (f *fakeAnswers) GetForTarget(ctx context.Context, submissionID uuid.UUID, questionID, problemID *uuid.UUID) (*model.Answer, error) {
	for _, a := range f.answers {
		if a.SubmissionID != submissionID {
			continue
		}
		if questionID != nil && a.QuestionID != nil && *a.QuestionID == *questionID {
			return a, nil
		}
		if problemID != nil && a.ProblemID != nil && *a.ProblemID == *problemID {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAnswers) Upsert(ctx context.Context, ans *model.Answer) error {
	if ans.ID == uuid.Nil {
		ans.ID = uuid.New()
		f.answers = append(f.answers, ans)
	}
	return nil
}

func (f *fakeAnswers) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, a := range f.answers {
		if a.SubmissionID == submissionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	enqueued []uuid.UUID
}

func (f *fakeNotifier) EnqueueCheck(ctx context.Context, submissionID uuid.UUID) error {
	f.enqueued = append(f.enqueued, submissionID)
	return nil
}

// ─── Fixture ────────────────────────────────────────────────────────

const (
	testCandidateID = 42
	testAccessCode  = "OPEN-SESAME"
)

type fixture struct {
	svc         *AttemptService
	clk         *clock.Fake
	assessments *fakeAssessments
	submissions *fakeSubmissions
	answers     *fakeAnswers
	notifier    *fakeNotifier
}

func newFixture(t *testing.T, a *model.Assessment) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAccessCode), bcrypt.MinCost)
	require.NoError(t, err)

	verified := time.Now()
	f := &fixture{
		clk: clock.NewFake(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),
		assessments: &fakeAssessments{
			byID: map[uuid.UUID]*model.Assessment{a.ID: a},
			invites: map[inviteKey]*model.Invite{
				{a.ID, testCandidateID}: {
					ID:             uuid.New(),
					AssessmentID:   a.ID,
					CandidateID:    testCandidateID,
					AccessCodeHash: string(hash),
					OTPVerifiedAt:  &verified,
				},
			},
		},
		submissions: &fakeSubmissions{byID: map[uuid.UUID]*model.Submission{}},
		answers:     &fakeAnswers{},
		notifier:    &fakeNotifier{},
	}
	f.svc = NewAttemptService(f.assessments, f.submissions, f.answers, f.notifier, f.clk, nil, zerolog.Nop())
	return f
}

func (f *fixture) start(t *testing.T, assessmentID uuid.UUID) *model.Submission {
	t.Helper()
	sub, err := f.svc.StartAttempt(context.Background(), assessmentID, testCandidateID, testAccessCode)
	require.NoError(t, err)
	return sub
}

// ─── StartAttempt ───────────────────────────────────────────────────

func TestStartAttemptCreatesSubmission(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)

	sub := f.start(t, a.ID)
	assert.Equal(t, model.SubmissionStatusInProgress, sub.Status)
	assert.Equal(t, testCandidateID, sub.CandidateID)
	assert.Equal(t, f.clk.Now(), sub.StartedAt)
	assert.NotEqual(t, uuid.Nil, sub.ID)
}

func TestStartAttemptIdempotent(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)

	first := f.start(t, a.ID)
	f.clk.Advance(time.Minute)
	second := f.start(t, a.ID)
	assert.Equal(t, first.ID, second.ID, "restart returns the open attempt")
	assert.Equal(t, first.StartedAt, second.StartedAt, "the clock does not reset")
}

func TestStartAttemptRejections(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, a.ID, testCandidateID, "wrong-code")
	assert.ErrorIs(t, err, ErrInvalidAccessCode)

	_, err = f.svc.StartAttempt(ctx, a.ID, 999, testAccessCode)
	assert.ErrorIs(t, err, ErrNotInvited)

	_, err = f.svc.StartAttempt(ctx, uuid.New(), testCandidateID, testAccessCode)
	assert.ErrorIs(t, err, ErrAssessmentNotAvailable)

	a.Status = model.AssessmentStatusDraft
	_, err = f.svc.StartAttempt(ctx, a.ID, testCandidateID, testAccessCode)
	assert.ErrorIs(t, err, ErrAssessmentNotAvailable)
}

func TestStartAttemptRequiresVerifiedOTP(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	f.assessments.invites[inviteKey{a.ID, testCandidateID}].OTPVerifiedAt = nil

	_, err := f.svc.StartAttempt(context.Background(), a.ID, testCandidateID, testAccessCode)
	assert.ErrorIs(t, err, ErrNotInvited)
}

func TestStartAttemptNoRetake(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	ctx := context.Background()

	sub := f.start(t, a.ID)
	_, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)

	_, err = f.svc.StartAttempt(ctx, a.ID, testCandidateID, testAccessCode)
	assert.ErrorIs(t, err, ErrRetakeNotAllowed)
}

// ─── EnterSection ───────────────────────────────────────────────────

func TestEnterSectionFlow(t *testing.T) {
	a := sectionAssessment(10, 20)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	snap, err := f.svc.EnterSection(ctx, sub.ID, testCandidateID, a.Sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, TimerStatusRunning, snap.Status)
	assert.Equal(t, int64(600), snap.LimitSeconds)

	// 2 minutes later, switch sections: section 1 freezes at 120s.
	f.clk.Advance(2 * time.Minute)
	snap, err = f.svc.EnterSection(ctx, sub.ID, testCandidateID, a.Sections[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), sub.SectionUsage[a.Sections[0].ID])
	assert.Equal(t, int64(1200), snap.LimitSeconds)

	_, err = f.svc.EnterSection(ctx, sub.ID, testCandidateID, uuid.New())
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestEnterSectionWrongCandidate(t *testing.T) {
	a := sectionAssessment(10)
	f := newFixture(t, a)
	sub := f.start(t, a.ID)

	_, err := f.svc.EnterSection(context.Background(), sub.ID, 999, a.Sections[0].ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

// ─── SaveAnswer and the time guard ──────────────────────────────────

func TestSaveAnswerWithinGrace(t *testing.T) {
	a := sectionAssessment(1) // 60s budget
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	_, err := f.svc.EnterSection(ctx, sub.ID, testCandidateID, sec.ID)
	require.NoError(t, err)

	// 65s elapsed: past the limit but inside the 10s grace window.
	f.clk.Advance(65 * time.Second)
	ans, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"B"}})
	require.NoError(t, err)
	assert.Equal(t, model.AnswerStatusAttempted, ans.Status)

	// 75s elapsed: rejected, and nothing was written.
	f.clk.Advance(10 * time.Second)
	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"C"}})
	assert.ErrorIs(t, err, ErrTimeExpired)
	assert.Equal(t, model.FlexStrings{"B"}, f.answers.answers[0].SelectedAnswer)
}

func TestSaveAnswerGlobalGuard(t *testing.T) {
	a := globalAssessment(10)
	sec := model.Section{ID: uuid.New(), AssessmentID: a.ID, MarksPerQuestion: 1}
	q := addQuestion(&sec, model.QuestionTypeSingleChoice, `"A"`, 1)
	a.Sections = append(a.Sections, sec)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	f.clk.Advance(599 * time.Second)
	_, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"A"}})
	require.NoError(t, err)

	f.clk.Advance(16 * time.Second) // 615s, past 600+10 grace
	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"B"}})
	assert.ErrorIs(t, err, ErrTimeExpired)
}

func TestSaveAnswerMergeSemantics(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	ans, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"A"}, TimeSpentSec: 10})
	require.NoError(t, err)
	assert.Equal(t, 2.0, ans.MaxMarks, "max marks resolved from the question")

	// A later partial update replaces the selection and accumulates time.
	review := true
	ans, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"B"}, TimeSpentSec: 5, MarkedForReview: &review})
	require.NoError(t, err)
	assert.Equal(t, model.FlexStrings{"B"}, ans.SelectedAnswer)
	assert.Equal(t, int64(15), ans.TimeSpentSec)
	assert.Equal(t, model.AnswerStatusMarkedForReview, ans.Status)
	assert.Len(t, f.answers.answers, 1, "one row per (submission, question)")
}

func TestSaveAnswerTrustsClientMarks(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	preScored := 1.5
	ans, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, Selected: model.FlexStrings{"C"}, MarksObtained: &preScored})
	require.NoError(t, err)
	assert.Equal(t, model.AnswerStatusEvaluated, ans.Status)
	assert.Equal(t, 1.5, *ans.MarksObtained)

	// Submit keeps the client's marks even though "C" is wrong.
	result, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1.5, result.TotalScore)
}

func TestSaveAnswerTargetValidation(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	_, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, uuid.New(),
		&model.SaveAnswerRequest{QuestionID: &q.ID})
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{})
	assert.ErrorIs(t, err, ErrAnswerTargetMissing)

	pid := uuid.New()
	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q.ID, ProblemID: &pid})
	assert.ErrorIs(t, err, ErrAnswerTargetMissing)
}

// ─── SaveCodingResult ───────────────────────────────────────────────

func codingFixture(t *testing.T) (*fixture, *model.Assessment, uuid.UUID) {
	a := sectionAssessment(0)
	problemID := uuid.New()
	a.Sections[0].Problems = []model.SectionProblem{
		{SectionID: a.Sections[0].ID, ProblemID: problemID, Marks: 10},
	}
	return newFixture(t, a), a, problemID
}

func TestSaveCodingResultConvertsPercentage(t *testing.T) {
	f, a, problemID := codingFixture(t)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	ans, err := f.svc.SaveCodingResult(ctx, sub.ID, testCandidateID, &model.SaveCodingResultRequest{
		ProblemID: problemID, Language: "go", Code: "package main",
		PassedTests: 3, TotalTests: 5, Status: "PARTIAL", Score: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, *ans.MarksObtained, "60% of 10 allocated marks")
	assert.False(t, *ans.IsCorrect)
	assert.Equal(t, model.AnswerStatusEvaluated, ans.Status)
	require.NotNil(t, ans.CodingResult)
	assert.Equal(t, 60.0, ans.CodingResult.Score)

	// A later full-score run overwrites the cached result.
	ans, err = f.svc.SaveCodingResult(ctx, sub.ID, testCandidateID, &model.SaveCodingResultRequest{
		ProblemID: problemID, Language: "go", Code: "package main",
		PassedTests: 5, TotalTests: 5, Status: "ACCEPTED", Score: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, *ans.MarksObtained)
	assert.True(t, *ans.IsCorrect)
}

func TestSaveCodingResultUnknownProblem(t *testing.T) {
	f, a, _ := codingFixture(t)
	sub := f.start(t, a.ID)

	_, err := f.svc.SaveCodingResult(context.Background(), sub.ID, testCandidateID, &model.SaveCodingResultRequest{
		ProblemID: uuid.New(), Language: "go", Code: "x", Status: "ACCEPTED", Score: 100,
	})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

// ─── Submit ─────────────────────────────────────────────────────────

func TestSubmitEvaluatesAndFreezes(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	sec.NegativeMarkingRate = 0.25
	sec.QuestionCount = 2
	sec.MarksPerQuestion = 2
	q1 := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)
	q2 := addQuestion(sec, model.QuestionTypeMultipleChoice, `["A","C"]`, 2)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	_, err := f.svc.EnterSection(ctx, sub.ID, testCandidateID, sec.ID)
	require.NoError(t, err)
	f.clk.Advance(90 * time.Second)

	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q1.ID, Selected: model.FlexStrings{"B"}})
	require.NoError(t, err)
	_, err = f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, sec.ID,
		&model.SaveAnswerRequest{QuestionID: &q2.ID, Selected: model.FlexStrings{"A", "B"}})
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionStatusEvaluated, result.Status)
	assert.Equal(t, 1.5, result.TotalScore, "+2 correct, -0.5 negative")
	assert.Equal(t, 4.0, result.MaxScore)
	require.NotNil(t, result.SubmittedAt)
	assert.False(t, result.SectionRunning(), "running section frozen")
	assert.Equal(t, int64(90), result.SectionUsage[sec.ID])
	assert.Equal(t, "submitted", result.Analytics.EndReason)
	assert.Equal(t, model.VerdictPending, result.Analytics.Verdict.Status)

	assert.Equal(t, []uuid.UUID{sub.ID}, f.notifier.enqueued, "plagiarism check queued once")
	assert.Equal(t, 1, f.submissions.finalizeCount)
}

func TestSubmitIdempotent(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	first, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)
	score := first.TotalScore

	_, err = f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, score, first.TotalScore, "second call mutates nothing")
	assert.Len(t, f.notifier.enqueued, 1)
}

func TestSubmitReplaysBufferedAnswers(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeFillBlank, `"Paris"`, 1)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	req := &model.SubmitRequest{
		IsAutoSubmit: true,
		Answers: []model.BufferedAnswer{
			{
				SectionID: sec.ID,
				SaveAnswerRequest: model.SaveAnswerRequest{
					QuestionID: &q.ID, Selected: model.FlexStrings{" paris "},
				},
			},
			{
				// An invalid buffered entry is skipped, not fatal.
				SectionID: uuid.New(),
				SaveAnswerRequest: model.SaveAnswerRequest{
					QuestionID: &q.ID, Selected: model.FlexStrings{"x"},
				},
			},
		},
	}

	result, err := f.svc.Submit(ctx, sub.ID, testCandidateID, req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.TotalScore, "buffered fill-blank evaluated")
	assert.Equal(t, "auto_submitted", result.Analytics.EndReason)
	assert.Len(t, f.answers.answers, 1)
}

func TestSubmitUnjudgedCodeScoresZero(t *testing.T) {
	f, a, problemID := codingFixture(t)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	code := "print('wip')"
	_, err := f.svc.SaveAnswer(ctx, sub.ID, testCandidateID, a.Sections[0].ID,
		&model.SaveAnswerRequest{ProblemID: &problemID, Code: &code})
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.TotalScore, "typed code without judging earns nothing")
	assert.Equal(t, 10.0, result.MaxScore)
}

// ─── OverrideVerdict ────────────────────────────────────────────────

func TestOverrideVerdict(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	passed := model.VerdictPassed
	patch := &model.VerdictPatch{Status: &passed}

	// Not allowed while the attempt is open.
	_, err := f.svc.OverrideVerdict(ctx, sub.ID, 7, patch)
	assert.ErrorIs(t, err, ErrSubmissionNotActive)

	submitted, err := f.svc.Submit(ctx, sub.ID, testCandidateID, &model.SubmitRequest{})
	require.NoError(t, err)
	frozenScore := submitted.TotalScore

	notes := "manual review ok"
	adjusted := 5.0
	patch.Notes = &notes
	patch.AdjustedScore = &adjusted

	result, err := f.svc.OverrideVerdict(ctx, sub.ID, 7, patch)
	require.NoError(t, err)
	v := result.Analytics.Verdict
	assert.Equal(t, model.VerdictPassed, v.Status)
	assert.Equal(t, "manual review ok", v.Notes)
	assert.Equal(t, 5.0, *v.AdjustedScore)
	require.NotNil(t, v.EvaluatorID)
	assert.Equal(t, 7, *v.EvaluatorID)
	assert.NotNil(t, v.EvaluatedAt)
	assert.Equal(t, frozenScore, result.TotalScore, "computed score untouched")
}

// ─── GetTimer ───────────────────────────────────────────────────────

func TestGetTimerOwnership(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	sub := f.start(t, a.ID)

	_, err := f.svc.GetTimer(context.Background(), sub.ID, 999)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetTimerSectionIdlePreview(t *testing.T) {
	a := sectionAssessment(15, 30)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	snap, err := f.svc.GetTimer(ctx, sub.ID, testCandidateID)
	require.NoError(t, err)
	assert.Equal(t, TimerStatusIdle, snap.Status)
	assert.Equal(t, int64(900), snap.TimeLeftSeconds, "first section previewed")
	require.Len(t, snap.Sections, 2)
}

func TestGetTimerGlobalRuns(t *testing.T) {
	a := globalAssessment(10)
	f := newFixture(t, a)
	ctx := context.Background()
	sub := f.start(t, a.ID)

	f.clk.Advance(4 * time.Minute)
	snap, err := f.svc.GetTimer(ctx, sub.ID, testCandidateID)
	require.NoError(t, err)
	assert.Equal(t, TimerStatusRunning, snap.Status)
	assert.Equal(t, int64(240), snap.UsedSeconds)
	assert.Equal(t, int64(360), snap.TimeLeftSeconds)
}
