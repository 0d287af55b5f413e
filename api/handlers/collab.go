package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowcanvas/backend/internal/collab"
	"github.com/flowcanvas/backend/internal/ws"
)

// CollabHandler exposes the collaboration WebSocket endpoint and live
// coordinator stats.
type CollabHandler struct {
	gateway *ws.Gateway
	coord   *collab.Coordinator
}

// NewCollabHandler creates a new CollabHandler.
func NewCollabHandler(gateway *ws.Gateway, coord *collab.Coordinator) *CollabHandler {
	return &CollabHandler{
		gateway: gateway,
		coord:   coord,
	}
}

// Connect handles GET /api/collab/connect - upgrades to a WebSocket
// collaboration session. The gateway refuses the connection before the
// upgrade when the identity token is missing or invalid.
func (h *CollabHandler) Connect(c *gin.Context) {
	if err := h.gateway.HandleConnection(c.Writer, c.Request); err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
	}
}

// StatsResponse reports live collaboration counts.
type StatsResponse struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
	Locks    int `json:"locks"`
	Clients  int `json:"clients"`
}

// Stats handles GET /api/collab/stats - returns live coordinator counts.
func (h *CollabHandler) Stats(c *gin.Context) {
	stats := h.coord.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		Sessions: stats.Sessions,
		Rooms:    stats.Rooms,
		Locks:    stats.Locks,
		Clients:  h.gateway.Router().ClientCount(),
	})
}

// RegisterRoutes registers the collaboration routes on a Gin router group.
func (h *CollabHandler) RegisterRoutes(rg *gin.RouterGroup) {
	collab := rg.Group("/collab")
	{
		collab.GET("/connect", h.Connect)
		collab.GET("/stats", h.Stats)
	}
}
