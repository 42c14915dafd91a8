package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserStats returns the owner's storage usage report. Responses are
// cached briefly per user, the aggregates hit several tables.
func (a *API) UserStats(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	report, err := a.Files.Usage(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
