package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/talentprove/assess-backend/internal/middleware"
	"github.com/talentprove/assess-backend/internal/model"
	"github.com/talentprove/assess-backend/internal/response"
	"github.com/talentprove/assess-backend/internal/service"
	"github.com/talentprove/assess-backend/internal/validator"
)

// AttemptHandler handles the candidate-facing attempt lifecycle.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt godoc
// POST /api/v1/candidate/assessments/:assessment_id/attempt
// Starts (or resumes) the candidate's attempt on an assessment.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, err := uuid.Parse(c.Param("assessment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.attemptService.StartAttempt(c.Request.Context(), assessmentID, claims.UserID, req.AccessCode)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// EnterSection godoc
// POST /api/v1/candidate/submissions/:submission_id/sections/:section_id/enter
// Switches the active section, freezing time on the previous one.
func (h *AttemptHandler) EnterSection(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snapshot, err := h.attemptService.EnterSection(c.Request.Context(), submissionID, claims.UserID, sectionID)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"timer": snapshot})
}

// GetTimer godoc
// GET /api/v1/candidate/submissions/:submission_id/timer
// Returns the current timer snapshot. Read-only, safe to poll.
func (h *AttemptHandler) GetTimer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snapshot, err := h.attemptService.GetTimer(c.Request.Context(), submissionID, claims.UserID)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"timer": snapshot})
}

// SaveAnswer godoc
// PUT /api/v1/candidate/submissions/:submission_id/sections/:section_id/answer
// Saves or updates one answer, subject to the time guard.
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !req.HasTarget() {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingTarget)
		return
	}

	ans, err := h.attemptService.SaveAnswer(c.Request.Context(), submissionID, claims.UserID, sectionID, &req)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": ans})
}

// SaveCodingResult godoc
// PUT /api/v1/candidate/submissions/:submission_id/coding-result
// Records a judge run for a coding problem and converts it to marks.
func (h *AttemptHandler) SaveCodingResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveCodingResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ans, err := h.attemptService.SaveCodingResult(c.Request.Context(), submissionID, claims.UserID, &req)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": ans})
}

// Submit godoc
// POST /api/v1/candidate/submissions/:submission_id/submit
// Finalizes the attempt: replays buffered answers, evaluates, and scores.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.attemptService.Submit(c.Request.Context(), submissionID, claims.UserID, &req)
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// failAttempt maps service-layer errors onto API error codes.
func (h *AttemptHandler) failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimeExpired):
		response.Fail(c, http.StatusForbidden, response.ErrTimeExpired)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrSubmissionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionNotActive)
	case errors.Is(err, service.ErrRetakeNotAllowed):
		response.Fail(c, http.StatusForbidden, response.ErrRetakeForbidden)
	case errors.Is(err, service.ErrAssessmentNotAvailable):
		response.Fail(c, http.StatusForbidden, response.ErrAssessmentNotAvailable)
	case errors.Is(err, service.ErrNotInvited):
		response.Fail(c, http.StatusForbidden, response.ErrNotInvited)
	case errors.Is(err, service.ErrInvalidAccessCode):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidAccessCode)
	case errors.Is(err, service.ErrSectionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSectionNotFound)
	case errors.Is(err, service.ErrAnswerTargetMissing):
		response.Fail(c, http.StatusBadRequest, response.ErrMissingTarget)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
