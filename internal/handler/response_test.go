package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind error
		want int
	}{
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrConflict, http.StatusBadRequest},
		{model.ErrAuth, http.StatusUnauthorized},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrNotFound, http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind), tt.kind.Error())
	}
}

func TestWriteError_WrappedHandledError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	err := errors.Join(errors.New("context"), model.NewNotFoundError("message not found"))
	writeError(c, logger.Nop(), "test", err)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"message not found"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name string
		err  error
		want int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health(pingerFunc(func() error { return tc.err })))

			w := doJSON(r, http.MethodGet, "/health", "")
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
