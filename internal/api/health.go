package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WSHealthHandler reports that the WebSocket endpoint is mounted; load
// balancers probe it before routing upgrade requests
func WSHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}
