package handler

import (
	"net/http"
	"strconv"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles message board requests
type MessageHandler struct {
	service service.MessageService
	log     *logger.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(s service.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{service: s, log: log}
}

// queryInt returns the named query parameter, or 0 when it is missing or malformed
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		writeError(c, h.log, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	var req model.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	msg, err := h.service.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		writeError(c, h.log, "create message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), messageID, userID); err != nil {
		writeError(c, h.log, "delete message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

// RegisterMessageRoutes registers message routes. liveHandler serves the websocket feed.
func (h *MessageHandler) RegisterMessageRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, liveHandler gin.HandlerFunc) {
	messages := rg.Group("/messages")
	messages.Use(authMW)
	{
		messages.GET("", h.ListMessages)
		messages.POST("", h.CreateMessage)
		messages.DELETE("/:id", h.DeleteMessage)
		if liveHandler != nil {
			messages.GET("/live", liveHandler)
		}
	}
}
