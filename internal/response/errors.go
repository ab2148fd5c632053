package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidAccessCode  ErrCode = "INVALID_ACCESS_CODE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrCandidateOnly      ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrOrganizerOnly      ErrCode = "ORGANIZER_ACCESS_ONLY"
	ErrNotInvited         ErrCode = "NOT_INVITED"
	ErrNotAssessmentOwner ErrCode = "NOT_ASSESSMENT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrMissingTarget  ErrCode = "MISSING_TARGET"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Attempt-specific ──────────────────────────────────────────────
	ErrAssessmentNotAvailable ErrCode = "ASSESSMENT_NOT_AVAILABLE"
	ErrRetakeForbidden        ErrCode = "RETAKE_FORBIDDEN"
	ErrTimeExpired            ErrCode = "TIME_EXPIRED"
	ErrAlreadySubmitted       ErrCode = "ALREADY_SUBMITTED"
	ErrSubmissionNotActive    ErrCode = "SUBMISSION_NOT_ACTIVE"
	ErrSectionNotFound        ErrCode = "SECTION_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidAccessCode:
		return "The access code is incorrect."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCandidateOnly:
		return "This resource is restricted to candidates."
	case ErrOrganizerOnly:
		return "This resource is restricted to organizers."
	case ErrNotInvited:
		return "You have not been invited to this assessment."
	case ErrNotAssessmentOwner:
		return "You are not the owner of this assessment."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrMissingTarget:
		return "Exactly one of question_id or problem_id must be provided."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Attempt-specific ──────────────────────────────────────────────
	case ErrAssessmentNotAvailable:
		return "This assessment is currently not available."
	case ErrRetakeForbidden:
		return "You have already completed this assessment. Retakes are not allowed."
	case ErrTimeExpired:
		return "Time has expired. Your answer was not saved."
	case ErrAlreadySubmitted:
		return "This submission has already been finalized."
	case ErrSubmissionNotActive:
		return "This submission is no longer in progress."
	case ErrSectionNotFound:
		return "The section does not belong to this assessment."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
