package live

import (
	"net/http"

	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
)

// ServeWS upgrades an authenticated request to a live feed connection.
// It must run behind the session middleware.
func ServeWS(hub *Hub, originPatterns []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := model.IdentityFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.log.Warn("live accept failed", "error", err)
			return
		}

		client := NewClient(hub, conn, identity.UserID)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump()
		client.ReadPump(c.Request.Context())
	}
}
