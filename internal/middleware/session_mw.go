package middleware

import (
	"context"
	"errors"
	"net/http"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey     = "authUser"
	AuthRoleKey     = "authRole"
	SessionTokenKey = "sessionToken"
)

// Authenticator resolves a session cookie value to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// SessionAuthMiddleware rejects requests without a live session and binds the
// caller's identity to both the gin and the request context
func SessionAuthMiddleware(auth Authenticator, cookieName string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, model.ErrAuth) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
				return
			}
			log.Error("session lookup failed", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}

		c.Set(AuthUserKey, user.ID)
		c.Set(AuthRoleKey, user.Role)
		c.Set(SessionTokenKey, token)
		c.Request = c.Request.WithContext(model.WithIdentity(c.Request.Context(), model.Identity{
			UserID: user.ID,
			Role:   user.Role,
			Token:  token,
		}))

		c.Next()
	}
}
