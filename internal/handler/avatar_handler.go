package handler

import (
	"errors"
	"net/http"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/logger"

	"github.com/gin-gonic/gin"
)

// AvatarHandler serves stored avatars
type AvatarHandler struct {
	store avatar.Store
	log   *logger.Logger
}

// NewAvatarHandler creates a new AvatarHandler
func NewAvatarHandler(store avatar.Store, log *logger.Logger) *AvatarHandler {
	return &AvatarHandler{store: store, log: log}
}

func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	rc, contentType, err := h.store.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, avatar.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "avatar not found"})
			return
		}
		writeError(c, h.log, "get avatar", err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	})
}

// RegisterAvatarRoutes serves avatars under prefix, e.g. /avatars
func (h *AvatarHandler) RegisterAvatarRoutes(r gin.IRoutes, prefix string) {
	r.GET(prefix+"/:name", h.GetAvatar)
	r.HEAD(prefix+"/:name", h.GetAvatar)
}
