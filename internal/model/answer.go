package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerStatus enumerates per-answer states.
type AnswerStatus string

const (
	AnswerStatusUnattempted     AnswerStatus = "UNATTEMPTED"
	AnswerStatusAttempted       AnswerStatus = "ATTEMPTED"
	AnswerStatusMarkedForReview AnswerStatus = "MARKED_FOR_REVIEW"
	AnswerStatusEvaluated       AnswerStatus = "EVALUATED"
)

// Answer is one candidate response per (submission, question) or
// (submission, problem); exactly one of QuestionID/ProblemID is set.
type Answer struct {
	ID             uuid.UUID     `json:"id"`
	SubmissionID   uuid.UUID     `json:"submission_id"`
	SectionID      uuid.UUID     `json:"section_id"`
	QuestionID     *uuid.UUID    `json:"question_id,omitempty"`
	ProblemID      *uuid.UUID    `json:"problem_id,omitempty"`
	Status         AnswerStatus  `json:"status"`
	SelectedAnswer FlexStrings   `json:"selected_answer,omitempty"`
	Code           *string       `json:"code,omitempty"`
	Language       *string       `json:"language,omitempty"`
	MarksObtained  *float64      `json:"marks_obtained,omitempty"` // nil = not yet evaluated
	MaxMarks       float64       `json:"max_marks"`
	IsCorrect      *bool         `json:"is_correct,omitempty"`
	CodingResult   *CodingResult `json:"coding_result,omitempty"`
	TimeSpentSec   int64         `json:"time_spent_seconds"` // client-reported, advisory only
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Attempted reports whether the answer carries any candidate content.
func (a *Answer) Attempted() bool {
	return len(a.SelectedAnswer) > 0 || (a.Code != nil && *a.Code != "")
}

// CodingResult is the cached judge output for one coding answer.
// Score is the judge's 0–100 percentage, not absolute marks.
type CodingResult struct {
	PassedTests   int             `json:"passed_tests"`
	TotalTests    int             `json:"total_tests"`
	Status        string          `json:"status"`
	Score         float64         `json:"score"`
	SampleResults json.RawMessage `json:"sample_results,omitempty"`
	Plagiarism    *string         `json:"plagiarism,omitempty"`
}

// FlexStrings decodes a JSON value that may be a single string or an
// array of strings. Single-choice and fill-blank answers arrive as
// scalars, multiple-choice answers as arrays.
type FlexStrings []string

// UnmarshalJSON accepts "x", ["x","y"], or null.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = FlexStrings{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*f = FlexStrings(many)
	return nil
}

// SaveAnswerRequest is the partial payload merged into an answer.
// Exactly one of QuestionID/ProblemID must be set.
type SaveAnswerRequest struct {
	QuestionID      *uuid.UUID  `json:"question_id" binding:"omitempty"`
	ProblemID       *uuid.UUID  `json:"problem_id" binding:"omitempty"`
	Selected        FlexStrings `json:"selected" binding:"omitempty"`
	Code            *string     `json:"code" binding:"omitempty,max=65535"`
	Language        *string     `json:"language" binding:"omitempty,max=40"`
	TimeSpentSec    int64       `json:"time_spent_seconds" binding:"omitempty,min=0"` // delta, accumulated
	MarkedForReview *bool       `json:"marked_for_review" binding:"omitempty"`
	MarksObtained   *float64    `json:"marks_obtained" binding:"omitempty"`
	MaxMarks        *float64    `json:"max_marks" binding:"omitempty,min=0"`
}

// HasTarget reports whether exactly one of question/problem id is set.
func (r *SaveAnswerRequest) HasTarget() bool {
	return (r.QuestionID != nil) != (r.ProblemID != nil)
}

// BufferedAnswer is one client-buffered answer replayed during submit.
type BufferedAnswer struct {
	SectionID uuid.UUID `json:"section_id" binding:"required"`
	SaveAnswerRequest
}

// SubmitRequest finalizes the attempt. Answers is an optional last batch
// replayed through the save path before evaluation.
type SubmitRequest struct {
	IsAutoSubmit bool             `json:"is_auto_submit"`
	Answers      []BufferedAnswer `json:"answers" binding:"omitempty,dive"`
}

// SaveCodingResultRequest records a judged run for a coding problem.
// Score is the judge's percentage, converted server-side to absolute marks.
type SaveCodingResultRequest struct {
	ProblemID     uuid.UUID       `json:"problem_id" binding:"required"`
	Language      string          `json:"language" binding:"required,max=40"`
	Code          string          `json:"code" binding:"required,max=65535"`
	PassedTests   int             `json:"passed_tests" binding:"min=0"`
	TotalTests    int             `json:"total_tests" binding:"min=0"`
	Status        string          `json:"status" binding:"required,max=64"`
	Score         float64         `json:"score" binding:"min=0,max=100"`
	SampleResults json.RawMessage `json:"sample_results" binding:"omitempty"`
}
