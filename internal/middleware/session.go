package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentprove/assess-backend/internal/response"
	"github.com/talentprove/assess-backend/internal/service"
)

// CheckCandidateSession verifies that the candidate's token still matches the
// active session stored in Redis. A newer login supersedes older tokens.
func CheckCandidateSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if err := authService.ValidateCandidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
