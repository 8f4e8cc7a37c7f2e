package controllers

import (
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/alex-pricope/catch-the-mole/api/transport"
	"github.com/alex-pricope/catch-the-mole/live"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/gin-gonic/gin"
	"strings"
)

type LiveController struct {
	registry *rooms.Registry
	hub      *live.Hub
}

func NewLiveController(registry *rooms.Registry, hub *live.Hub) *LiveController {
	return &LiveController{
		registry: registry,
		hub:      hub,
	}
}

func (c *LiveController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/rooms/:password/ws", c.subscribe)
}

// RenderRoom builds the message a subscriber receives, the same view GET returns.
func RenderRoom(room *rooms.Room, fingerprint string) any {
	return models.Ok(models.TransformRoomView(room, fingerprint), "")
}

// subscribe godoc
// @Summary Watch a room
// @Description Upgrades to a websocket that receives the caller's room view after every change
// @Tags rooms
// @Param password path string true "Room password"
// @Param fingerprint query string false "Caller fingerprint, for clients that cannot set headers"
// @Success 101
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password}/ws [get]
func (c *LiveController) subscribe(g *gin.Context) {
	id, err := c.registry.IDByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	fingerprint := transport.Fingerprint(g)
	if fingerprint == "" {
		fingerprint = strings.TrimSpace(g.Query("fingerprint"))
	}
	if err := c.hub.Serve(g.Writer, g.Request, id, fingerprint); err != nil {
		logging.Log.Debugf("LIVE: subscription to %s ended: %v", id, err)
	}
}
