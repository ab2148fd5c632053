package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentprove/assess-backend/internal/model"
)

func addQuestion(sec *model.Section, qt model.QuestionType, correct string, marks float64) *model.Question {
	q := model.Question{
		ID:         uuid.New(),
		SectionID:  sec.ID,
		Type:       qt,
		CorrectRaw: json.RawMessage(correct),
		Marks:      marks,
	}
	if err := q.ResolveKey(); err != nil {
		panic(err)
	}
	sec.Questions = append(sec.Questions, q)
	return &sec.Questions[len(sec.Questions)-1]
}

func attemptedAnswer(sec *model.Section, q *model.Question, selected ...string) *model.Answer {
	return &model.Answer{
		ID:             uuid.New(),
		SectionID:      sec.ID,
		QuestionID:     &q.ID,
		Status:         model.AnswerStatusAttempted,
		SelectedAnswer: selected,
		MaxMarks:       q.Marks,
	}
}

func TestConvertJudgeScore(t *testing.T) {
	marks, correct := ConvertJudgeScore(100, 10)
	assert.Equal(t, 10.0, marks)
	assert.True(t, correct)

	marks, correct = ConvertJudgeScore(60, 10)
	assert.Equal(t, 6.0, marks)
	assert.False(t, correct, "partial credit is never correct")

	marks, correct = ConvertJudgeScore(0, 10)
	assert.Equal(t, 0.0, marks)
	assert.False(t, correct)

	marks, _ = ConvertJudgeScore(50, 7)
	assert.Equal(t, 3.5, marks)
}

func TestEvaluateSingleChoice(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)

	ans := attemptedAnswer(sec, q, " B ")
	require.NoError(t, evaluateAnswer(a, ans))
	assert.True(t, *ans.IsCorrect, "trims whitespace before comparing")
	assert.Equal(t, 2.0, *ans.MarksObtained)
	assert.Equal(t, model.AnswerStatusEvaluated, ans.Status)

	wrong := attemptedAnswer(sec, q, "C")
	require.NoError(t, evaluateAnswer(a, wrong))
	assert.False(t, *wrong.IsCorrect)
	assert.Equal(t, 0.0, *wrong.MarksObtained, "no negative marking at rate 0")
}

func TestEvaluateSingleChoiceNegativeMarking(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	sec.NegativeMarkingRate = 0.25
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)

	ans := attemptedAnswer(sec, q, "A")
	require.NoError(t, evaluateAnswer(a, ans))
	assert.Equal(t, -0.5, *ans.MarksObtained)
	assert.False(t, *ans.IsCorrect)
}

func TestEvaluateMultipleChoiceSetEquality(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeMultipleChoice, `["A","C"]`, 3)

	tests := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"exact order", []string{"A", "C"}, true},
		{"reversed order", []string{"C", "A"}, true},
		{"whitespace", []string{" C ", "A"}, true},
		{"subset", []string{"A"}, false},
		{"superset", []string{"A", "B", "C"}, false},
		{"disjoint", []string{"B", "D"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := attemptedAnswer(sec, q, tt.selected...)
			require.NoError(t, evaluateAnswer(a, ans))
			assert.Equal(t, tt.correct, *ans.IsCorrect)
		})
	}
}

func TestEvaluateFillBlank(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeFillBlank, `"Paris"`, 1)

	ans := attemptedAnswer(sec, q, "  paris ")
	require.NoError(t, evaluateAnswer(a, ans))
	assert.True(t, *ans.IsCorrect, "case-insensitive, trimmed")

	wrong := attemptedAnswer(sec, q, "Lyon")
	require.NoError(t, evaluateAnswer(a, wrong))
	assert.False(t, *wrong.IsCorrect)
}

func TestEvaluateSkipsPreScored(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)

	// Client-provided marks are trusted as-is, even if the selection
	// would have evaluated differently.
	preset := 1.5
	ans := attemptedAnswer(sec, q, "C")
	ans.MarksObtained = &preset
	require.NoError(t, evaluateAnswer(a, ans))
	assert.Equal(t, 1.5, *ans.MarksObtained)
	assert.Nil(t, ans.IsCorrect)
}

func TestEvaluateSkipsUnattempted(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)

	ans := attemptedAnswer(sec, q)
	ans.Status = model.AnswerStatusUnattempted
	require.NoError(t, evaluateAnswer(a, ans))
	assert.Nil(t, ans.MarksObtained)
	assert.Nil(t, ans.IsCorrect)
}

func TestEvaluateUnjudgedCodingScoresZero(t *testing.T) {
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	problemID := uuid.New()
	sec.Problems = append(sec.Problems, model.SectionProblem{
		SectionID: sec.ID, ProblemID: problemID, Marks: 10,
	})

	code := "package main"
	ans := &model.Answer{
		ID:        uuid.New(),
		SectionID: sec.ID,
		ProblemID: &problemID,
		Status:    model.AnswerStatusAttempted,
		Code:      &code,
		MaxMarks:  10,
	}
	require.NoError(t, evaluateAnswer(a, ans))
	assert.Equal(t, 0.0, *ans.MarksObtained, "typing without judging earns nothing")
	assert.False(t, *ans.IsCorrect)
	assert.Equal(t, model.AnswerStatusEvaluated, ans.Status)
}

func TestEvaluateUnknownSection(t *testing.T) {
	a := sectionAssessment(0)
	qID := uuid.New()
	ans := &model.Answer{
		ID:         uuid.New(),
		SectionID:  uuid.New(),
		QuestionID: &qID,
		Status:     model.AnswerStatusAttempted,
	}
	assert.Error(t, evaluateAnswer(a, ans))
}

func TestMatchKeyMarkedForReviewCounts(t *testing.T) {
	// MARKED_FOR_REVIEW answers still evaluate like attempted ones.
	a := sectionAssessment(0)
	sec := &a.Sections[0]
	q := addQuestion(sec, model.QuestionTypeSingleChoice, `"B"`, 2)

	ans := attemptedAnswer(sec, q, "B")
	ans.Status = model.AnswerStatusMarkedForReview
	require.NoError(t, evaluateAnswer(a, ans))
	assert.True(t, *ans.IsCorrect)
	assert.Equal(t, 2.0, *ans.MarksObtained)
}
