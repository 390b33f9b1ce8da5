package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/chachabrian/hilot-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades an authenticated ops connection onto the live feed.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(middleware.KeyUserID)
		services.HandleWebSocket(hub, c.Writer, c.Request, userID, middleware.Role(c))
	}
}
