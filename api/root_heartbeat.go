package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used to check if the server's alive
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
