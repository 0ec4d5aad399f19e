package handler

import (
	"net/http"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	cookie  CookieConfig
	log     *logger.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, cookie CookieConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: s, cookie: cookie, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, "register", err)
		return
	}

	h.cookie.set(c, token)
	c.JSON(http.StatusCreated, user.Public())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, "login", err)
		return
	}

	// A fresh session replaces whatever the client held before
	if old := h.cookie.token(c); old != "" {
		if err := h.service.Logout(c.Request.Context(), old); err != nil {
			h.log.Warn("failed to end previous session", "error", err)
		}
	}

	h.cookie.set(c, token)
	c.JSON(http.StatusOK, user.Public())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.cookie.token(c); token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			h.log.Warn("failed to end session on logout", "error", err)
		}
	}
	h.cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, "current user", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, rateLimitMW gin.HandlerFunc) {
	rg.POST("/register", rateLimitMW, h.Register)
	rg.POST("/login", rateLimitMW, h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/user", authMW, h.CurrentUser)
}
