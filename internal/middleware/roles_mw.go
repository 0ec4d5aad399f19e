package middleware

import (
	"context"
	"errors"
	"net/http"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminChecker decides whether a user currently holds the admin role
type AdminChecker interface {
	RequireAdmin(ctx context.Context, callerID uuid.UUID) error
}

// AdminMiddleware checks that the caller is an admin. The role is re-read from
// the store on every request rather than trusted from the session.
// It must run after SessionAuthMiddleware.
func AdminMiddleware(checker AdminChecker, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get(AuthUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
			return
		}
		userID, ok := userVal.(uuid.UUID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
			return
		}

		err := checker.RequireAdmin(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, model.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
		case errors.Is(err, model.ErrAuth):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		default:
			log.Error("admin check failed", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}
	}
}
