package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/middleware"
	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func init() {
	// Report binding failures by their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

type errorResponse struct {
	Message string             `json:"message"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, model.ErrValidation), errors.Is(kind, model.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, model.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(kind, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports handled errors as-is and hides everything else behind a logged 500
func writeError(c *gin.Context, log *logger.Logger, op string, err error) {
	var handled *model.Error
	if errors.As(err, &handled) {
		if status := statusFor(handled.Kind); status != http.StatusInternalServerError {
			c.JSON(status, errorResponse{Message: handled.Message, Errors: handled.Fields})
			return
		}
	}

	log.Error("request failed", "op", op, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

// writeBindError reports a malformed request body
func writeBindError(c *gin.Context, err error) {
	resp := errorResponse{Message: "Invalid request"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Errors = append(resp.Errors, model.FieldError{Field: fe.Field(), Message: fe.Field() + " is " + fe.Tag()})
		}
	} else {
		resp.Message = "Invalid request: " + err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// Helper to get authenticated user ID from context
func getAuthUserID(c *gin.Context) (uuid.UUID, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("invalid user ID type in context")
	}
	return userID, nil
}

// CookieConfig describes the session cookie handed to browsers
type CookieConfig struct {
	Name   string
	Secure bool
}

func (cc CookieConfig) set(c *gin.Context, token *model.SessionToken) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cc.Name,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cc CookieConfig) clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cc CookieConfig) token(c *gin.Context) string {
	value, err := c.Cookie(cc.Name)
	if err != nil {
		return ""
	}
	return value
}
