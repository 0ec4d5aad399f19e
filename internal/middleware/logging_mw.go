package middleware

import (
	"time"

	"bulletin_board/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs method, path, status and duration of every request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := c.Get(AuthUserKey); ok {
			args = append(args, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request completed", args...)
		case c.Writer.Status() >= 400:
			log.Warn("request completed", args...)
		default:
			log.Info("request completed", args...)
		}
	}
}
