package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentprove/assess-backend/internal/model"
)

func evaluated(sectionID uuid.UUID, marks, max float64, correct bool) *model.Answer {
	qID := uuid.New()
	return &model.Answer{
		ID:             uuid.New(),
		SectionID:      sectionID,
		QuestionID:     &qID,
		Status:         model.AnswerStatusEvaluated,
		SelectedAnswer: model.FlexStrings{"X"},
		MarksObtained:  &marks,
		MaxMarks:       max,
		IsCorrect:      &correct,
	}
}

func TestAggregateScoresTotals(t *testing.T) {
	a := sectionAssessment(0, 0)
	a.Sections[0].QuestionCount = 3
	a.Sections[1].QuestionCount = 1
	start := time.Now()
	sub := newSubmission(a, start)

	answers := []*model.Answer{
		evaluated(a.Sections[0].ID, 2, 2, true),
		evaluated(a.Sections[0].ID, -0.5, 2, false),
		evaluated(a.Sections[0].ID, 2, 2, true),
		evaluated(a.Sections[1].ID, 1, 1, true),
	}

	report := aggregateScores(a, sub, answers, start.Add(5*time.Minute))

	require.Len(t, report.SectionScores, 2)
	s1, s2 := report.SectionScores[0], report.SectionScores[1]

	assert.Equal(t, 3.5, s1.ObtainedMarks)
	assert.Equal(t, 6.0, s1.MaxMarks)
	assert.Equal(t, 2, s1.Correct)
	assert.Equal(t, 1, s1.Wrong)
	assert.Equal(t, 0.5, s1.NegativeDeduction)

	assert.Equal(t, 1.0, s2.ObtainedMarks)

	assert.Equal(t, 4.5, report.TotalScore)
	assert.Equal(t, 7.0, report.MaxScore)
	assert.InDelta(t, 64.2857, report.Percentage, 0.001)

	assert.Equal(t, 4, report.Analytics.TotalQuestions)
	assert.Equal(t, 4, report.Analytics.Attempted)
	assert.Equal(t, 3, report.Analytics.Correct)
	assert.Equal(t, 1, report.Analytics.Wrong)
	assert.Equal(t, 0.5, report.Analytics.NegativeDeducted)
	assert.Equal(t, model.VerdictPending, report.Analytics.Verdict.Status)
}

func TestAggregateScoresFloorsSectionAtZero(t *testing.T) {
	a := sectionAssessment(0)
	a.Sections[0].QuestionCount = 3
	sub := newSubmission(a, time.Now())

	// Three wrong answers at heavy negative marking: raw sum is -3.
	answers := []*model.Answer{
		evaluated(a.Sections[0].ID, -1, 2, false),
		evaluated(a.Sections[0].ID, -1, 2, false),
		evaluated(a.Sections[0].ID, -1, 2, false),
	}

	report := aggregateScores(a, sub, answers, time.Now())
	assert.Equal(t, 0.0, report.SectionScores[0].ObtainedMarks, "section floor is zero")
	assert.Equal(t, 3.0, report.SectionScores[0].NegativeDeduction)
	assert.Equal(t, 0.0, report.TotalScore)
}

func TestAggregateScoresUnansweredSectionFallsBackToConfig(t *testing.T) {
	a := sectionAssessment(0, 0)
	a.Sections[0].QuestionCount = 2
	a.Sections[0].MarksPerQuestion = 2
	a.Sections[1].QuestionCount = 1
	a.Sections[1].MarksPerQuestion = 1
	a.Sections[1].Problems = []model.SectionProblem{
		{SectionID: a.Sections[1].ID, ProblemID: uuid.New(), Marks: 10},
	}
	sub := newSubmission(a, time.Now())

	// Only section 1 has answers; section 2's max comes from config.
	answers := []*model.Answer{
		evaluated(a.Sections[0].ID, 2, 2, true),
		evaluated(a.Sections[0].ID, 0, 2, false),
	}

	report := aggregateScores(a, sub, answers, time.Now())
	assert.Equal(t, 4.0, report.SectionScores[0].MaxMarks)
	assert.Equal(t, 11.0, report.SectionScores[1].MaxMarks)
	assert.Equal(t, 15.0, report.MaxScore)
	assert.Equal(t, 2, report.SectionScores[1].Unattempted, "section 2 counts its problem too")
}

func TestAggregateScoresUnattemptedCounts(t *testing.T) {
	a := sectionAssessment(0)
	a.Sections[0].QuestionCount = 4
	sub := newSubmission(a, time.Now())

	answers := []*model.Answer{
		evaluated(a.Sections[0].ID, 1, 1, true),
		// One saved but empty answer row: not attempted, no marks.
		{
			ID:        uuid.New(),
			SectionID: a.Sections[0].ID,
			Status:    model.AnswerStatusUnattempted,
			MaxMarks:  1,
		},
	}

	report := aggregateScores(a, sub, answers, time.Now())
	assert.Equal(t, 1, report.Analytics.Attempted)
	assert.Equal(t, 3, report.Analytics.Unattempted)
}

func TestAggregateScoresTimeTakenPrefersSectionUsage(t *testing.T) {
	a := sectionAssessment(0, 0)
	start := time.Now()
	sub := newSubmission(a, start)
	sub.SectionUsage = model.SectionUsage{
		a.Sections[0].ID: 120,
		a.Sections[1].ID: 60,
	}

	report := aggregateScores(a, sub, nil, start.Add(30*time.Minute))
	assert.Equal(t, int64(180), report.Analytics.TimeTakenSeconds,
		"recorded usage wins over wall clock")
}

func TestAggregateScoresTimeTakenWallClockFallback(t *testing.T) {
	a := globalAssessment(60)
	start := time.Now()
	sub := newSubmission(a, start)

	report := aggregateScores(a, sub, nil, start.Add(10*time.Minute))
	assert.Equal(t, int64(600), report.Analytics.TimeTakenSeconds)
}

func TestAggregateScoresZeroMaxScore(t *testing.T) {
	a := sectionAssessment(0)
	sub := newSubmission(a, time.Now())

	report := aggregateScores(a, sub, nil, time.Now())
	assert.Equal(t, 0.0, report.Percentage, "no division by zero")
}
