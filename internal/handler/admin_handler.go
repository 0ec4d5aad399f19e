package handler

import (
	"net/http"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles user management requests
type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{service: s, log: log}
}

func targetUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	targetID, ok := targetUserID(c)
	if !ok {
		return
	}

	var req model.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	role := model.Role(*req.Role)
	if int(role) != *req.Role {
		writeError(c, h.log, "set role", service.ErrInvalidRole)
		return
	}

	if err := h.service.SetRole(c.Request.Context(), targetID, role); err != nil {
		writeError(c, h.log, "set role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully"})
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	callerID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	targetID, ok := targetUserID(c)
	if !ok {
		return
	}

	var req model.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.SetActive(c.Request.Context(), callerID, targetID, *req.IsActive); err != nil {
		writeError(c, h.log, "set active", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	callerID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	targetID, ok := targetUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), callerID, targetID); err != nil {
		writeError(c, h.log, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// RegisterAdminRoutes registers admin routes. adminMW runs before any body is read.
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)  // Requires authentication
	adminRoutes.Use(adminMW) // Requires admin role
	{
		adminRoutes.GET("/users", h.ListUsers)
		adminRoutes.PUT("/users/:id/role", h.SetRole)
		adminRoutes.PUT("/users/:id/active", h.SetActive)
		adminRoutes.DELETE("/users/:id", h.DeleteUser)
	}
}
