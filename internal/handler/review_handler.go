package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/talentprove/assess-backend/internal/middleware"
	"github.com/talentprove/assess-backend/internal/model"
	"github.com/talentprove/assess-backend/internal/response"
	"github.com/talentprove/assess-backend/internal/service"
	"github.com/talentprove/assess-backend/internal/validator"
)

// ReviewHandler handles organizer-facing result review endpoints.
type ReviewHandler struct {
	reviewService  *service.ReviewService
	attemptService *service.AttemptService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, attemptService *service.AttemptService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		attemptService: attemptService,
	}
}

// ListResults godoc
// GET /api/v1/organizer/assessments/:assessment_id/results
// Lists submission results for an assessment owned by the organizer.
func (h *ReviewHandler) ListResults(c *gin.Context) {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.reviewService.ListResults(c.Request.Context(), assessmentID, claims.UserID, page, perPage)
	if err != nil {
		h.failReview(c, err)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// GetSubmission godoc
// GET /api/v1/organizer/submissions/:submission_id
// Returns one submission with all of its answers.
func (h *ReviewHandler) GetSubmission(c *gin.Context) {
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

	detail, err := h.reviewService.GetSubmissionDetail(c.Request.Context(), submissionID, claims.UserID)
	if err != nil {
		h.failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// OverrideVerdict godoc
// PATCH /api/v1/organizer/submissions/:submission_id/verdict
// Overrides the verdict on a finished submission. Scores stay frozen.
func (h *ReviewHandler) OverrideVerdict(c *gin.Context) {
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

	var patch model.VerdictPatch
	if fields := validator.Bind(c, &patch); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.reviewService.VerifyOwnership(c.Request.Context(), submissionID, claims.UserID); err != nil {
		h.failReview(c, err)
		return
	}

	sub, err := h.attemptService.OverrideVerdict(c.Request.Context(), submissionID, claims.UserID, &patch)
	if err != nil {
		h.failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

func (h *ReviewHandler) failReview(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionNotActive)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
