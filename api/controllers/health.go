package controllers

import (
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/gin-gonic/gin"
	"net/http"
)

type HealthController struct {
	registry *rooms.Registry
}

func NewHealthController(registry *rooms.Registry) *HealthController {
	return &HealthController{registry: registry}
}

func (c *HealthController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", c.health)
}

// health godoc
// @Summary Liveness probe
// @Tags meta
// @Produce json
// @Success 200 {object} models.Envelope{data=models.HealthResponse}
// @Router /health [get]
func (c *HealthController) health(g *gin.Context) {
	g.JSON(http.StatusOK, models.Ok(models.HealthResponse{Status: "ok", Rooms: c.registry.Len()}, ""))
}
