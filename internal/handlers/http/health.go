package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobias-fyi/xebec/internal/models"
)

func (h *Handlers) registerHealthEndpoints(r *gin.Engine) {
	r.GET("/ping", h.ping)
}

// liveness check
func (h *Handlers) ping(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthCheckResponse{
		Status:  "active",
		Message: models.MsgPong,
	})
}
