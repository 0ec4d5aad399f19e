package handler

import (
	"errors"
	"net/http"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles requests on the caller's own account
type ProfileHandler struct {
	service service.ProfileService
	cookie  CookieConfig
	log     *logger.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(s service.ProfileService, cookie CookieConfig, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{service: s, cookie: cookie, log: log}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.log, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	err = h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		// A wrong current password is a bad request on this route, not a lost session
		if errors.Is(err, service.ErrWrongPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"message": service.ErrWrongPassword.Error()})
			return
		}
		writeError(c, h.log, "change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	var req model.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.UpdateAvatar(c.Request.Context(), userID, req.ImageURL)
	if err != nil {
		writeError(c, h.log, "update avatar", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		writeError(c, h.log, "delete account", err)
		return
	}
	h.cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// RegisterProfileRoutes registers routes on the caller's own account
func (h *ProfileHandler) RegisterProfileRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	self := rg.Group("")
	self.Use(authMW)
	{
		self.GET("/profile", h.GetProfile)
		self.PUT("/profile", h.UpdateProfile)
		self.POST("/profile/avatar", h.UpdateAvatar)
		self.PUT("/change-password", h.ChangePassword)
		self.DELETE("/account", h.DeleteAccount)
	}
}
