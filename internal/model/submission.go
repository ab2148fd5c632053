package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enumerates attempt lifecycle states.
type SubmissionStatus string

const (
	SubmissionStatusInProgress SubmissionStatus = "IN_PROGRESS"
	SubmissionStatusSubmitted  SubmissionStatus = "SUBMITTED"
	SubmissionStatusEvaluated  SubmissionStatus = "EVALUATED"
	SubmissionStatusExpired    SubmissionStatus = "EXPIRED"
)

// Completed reports whether the submission has left IN_PROGRESS for good.
func (s SubmissionStatus) Completed() bool {
	return s == SubmissionStatusSubmitted || s == SubmissionStatusEvaluated || s == SubmissionStatusExpired
}

// SectionUsage maps section id to accumulated seconds used. Entries exist
// only for sections the candidate has left at least once; the currently
// running section's live time is not included.
type SectionUsage map[uuid.UUID]int64

// Clone returns an independent copy so callers never hold a mutable
// reference into the submission aggregate.
func (u SectionUsage) Clone() SectionUsage {
	out := make(SectionUsage, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Total sums the accumulated seconds over all frozen sections.
func (u SectionUsage) Total() int64 {
	var total int64
	for _, v := range u {
		total += v
	}
	return total
}

// Submission is one candidate's attempt record for one assessment.
// At most one may be IN_PROGRESS per (candidate, assessment); once
// SUBMITTED or EVALUATED it is immutable except for verdict override.
type Submission struct {
	ID               uuid.UUID        `json:"id"`
	AssessmentID     uuid.UUID        `json:"assessment_id"`
	CandidateID      int              `json:"candidate_id"`
	Status           SubmissionStatus `json:"status"`
	StartedAt        time.Time        `json:"started_at"`
	SubmittedAt      *time.Time       `json:"submitted_at,omitempty"`
	CurrentSectionID *uuid.UUID       `json:"current_section_id,omitempty"`
	SectionStartedAt *time.Time       `json:"section_started_at,omitempty"`
	SectionUsage     SectionUsage     `json:"section_usage"`
	TotalScore       float64          `json:"total_score"`
	MaxScore         float64          `json:"max_score"`
	Percentage       float64          `json:"percentage"`
	SectionScores    []SectionScore   `json:"section_scores,omitempty"`
	Analytics        *Analytics       `json:"analytics,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SectionRunning reports whether a section clock is live right now.
func (s *Submission) SectionRunning() bool {
	return s.CurrentSectionID != nil && s.SectionStartedAt != nil
}

// SectionScore is the frozen per-section rollup computed at submit time.
type SectionScore struct {
	SectionID         uuid.UUID `json:"section_id"`
	Title             string    `json:"title"`
	MaxMarks          float64   `json:"max_marks"`
	ObtainedMarks     float64   `json:"obtained_marks"` // floored at zero
	Correct           int       `json:"correct"`
	Wrong             int       `json:"wrong"`
	Unattempted       int       `json:"unattempted"`
	NegativeDeduction float64   `json:"negative_deduction"`
	TimeUsedSeconds   int64     `json:"time_used_seconds"`
}

// Analytics aggregates attempt-level statistics plus the verdict.
type Analytics struct {
	TotalQuestions   int     `json:"total_questions"`
	Attempted        int     `json:"attempted"`
	Correct          int     `json:"correct"`
	Wrong            int     `json:"wrong"`
	Unattempted      int     `json:"unattempted"`
	NegativeDeducted float64 `json:"negative_deducted"`
	TimeTakenSeconds int64   `json:"time_taken_seconds"`
	EndReason        string  `json:"end_reason"` // "submitted" or "auto_submitted"
	Verdict          Verdict `json:"verdict"`
}

// VerdictStatus enumerates organizer-facing final determinations.
type VerdictStatus string

const (
	VerdictPending      VerdictStatus = "PENDING"
	VerdictPassed       VerdictStatus = "PASSED"
	VerdictFailed       VerdictStatus = "FAILED"
	VerdictDisqualified VerdictStatus = "DISQUALIFIED"
)

// Verdict is the human-overridable determination layered on top of the
// computed score. Overrides never touch TotalScore.
type Verdict struct {
	Status           VerdictStatus `json:"status"`
	AdjustedScore    *float64      `json:"adjusted_score,omitempty"`
	ViolationPenalty *float64      `json:"violation_penalty,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	EvaluatorID      *int          `json:"evaluator_id,omitempty"`
	EvaluatedAt      *time.Time    `json:"evaluated_at,omitempty"`
}

// VerdictPatch is the organizer payload merged into a frozen verdict.
// Nil fields leave the existing value untouched.
type VerdictPatch struct {
	Status           *VerdictStatus `json:"status" binding:"omitempty,oneof=PENDING PASSED FAILED DISQUALIFIED"`
	AdjustedScore    *float64       `json:"adjusted_score" binding:"omitempty,min=0"`
	ViolationPenalty *float64       `json:"violation_penalty" binding:"omitempty,min=0"`
	Notes            *string        `json:"notes" binding:"omitempty,max=2000"`
}

// StartAttemptRequest is the payload for opening a submission.
type StartAttemptRequest struct {
	AccessCode string `json:"access_code" binding:"required,min=4,max=64"`
}

// Invite ties a candidate to an assessment. The access code hash is checked
// when the attempt starts; OTP delivery itself is an external concern.
type Invite struct {
	ID             uuid.UUID  `json:"id"`
	AssessmentID   uuid.UUID  `json:"assessment_id"`
	CandidateID    int        `json:"candidate_id"`
	AccessCodeHash string     `json:"-"`
	OTPVerifiedAt  *time.Time `json:"otp_verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
