package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeMode selects how elapsed time is charged against an attempt.
type TimeMode string

const (
	// TimeModeGlobal runs one clock for the whole assessment.
	TimeModeGlobal TimeMode = "GLOBAL"
	// TimeModeSection gives every section its own budget; only the
	// currently entered section's clock runs.
	TimeModeSection TimeMode = "SECTION"
)

// AssessmentStatus enumerates the publishing states of an assessment.
type AssessmentStatus string

const (
	AssessmentStatusDraft     AssessmentStatus = "DRAFT"
	AssessmentStatusPublished AssessmentStatus = "PUBLISHED"
	AssessmentStatusArchived  AssessmentStatus = "ARCHIVED"
)

// Assessment is the read-only configuration an attempt runs against.
// It is assumed immutable for the lifetime of a submission.
type Assessment struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	OrganizerID     int              `json:"organizer_id"`
	TimeMode        TimeMode         `json:"time_mode"`
	DurationMinutes int              `json:"duration_minutes"` // 0 = unlimited (GLOBAL mode)
	Status          AssessmentStatus `json:"status"`
	Sections        []Section        `json:"sections,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Section is an ordered group of questions and coding problems,
// optionally with its own time budget.
type Section struct {
	ID                  uuid.UUID        `json:"id"`
	AssessmentID        uuid.UUID        `json:"assessment_id"`
	Title               string           `json:"title"`
	OrderNum            int              `json:"order_num"`
	TimeLimitMinutes    int              `json:"time_limit_minutes"`    // 0 = unlimited
	NegativeMarkingRate float64          `json:"negative_marking_rate"` // fraction of marks, 0–1
	MarksPerQuestion    float64          `json:"marks_per_question"`
	QuestionCount       int              `json:"question_count"`
	Questions           []Question       `json:"questions,omitempty"`
	Problems            []SectionProblem `json:"problems,omitempty"`
}

// TimeLimitSeconds returns the section budget in seconds, 0 meaning unlimited.
func (s *Section) TimeLimitSeconds() int64 {
	return int64(s.TimeLimitMinutes) * 60
}

// SectionProblem links a coding problem into a section with the marks
// it is worth inside this assessment.
type SectionProblem struct {
	SectionID uuid.UUID `json:"section_id"`
	ProblemID uuid.UUID `json:"problem_id"`
	Title     string    `json:"title"`
	Marks     float64   `json:"marks"`
	OrderNum  int       `json:"order_num"`
}

// DefaultProblemMarks is used when a section-problem link carries no
// explicit mark allocation.
const DefaultProblemMarks = 10

// QuestionByID finds a question within the section. Returns nil when absent.
func (s *Section) QuestionByID(id uuid.UUID) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// ProblemByID finds a coding problem link within the section. Returns nil when absent.
func (s *Section) ProblemByID(id uuid.UUID) *SectionProblem {
	for i := range s.Problems {
		if s.Problems[i].ProblemID == id {
			return &s.Problems[i]
		}
	}
	return nil
}

// SectionByID finds a section of the assessment. Returns nil when absent.
func (a *Assessment) SectionByID(id uuid.UUID) *Section {
	for i := range a.Sections {
		if a.Sections[i].ID == id {
			return &a.Sections[i]
		}
	}
	return nil
}

// GlobalDurationSeconds returns the assessment-wide budget in seconds,
// 0 meaning unlimited.
func (a *Assessment) GlobalDurationSeconds() int64 {
	return int64(a.DurationMinutes) * 60
}
