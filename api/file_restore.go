package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileRestore brings a trashed file back into the active set.
func (a *API) FileRestore(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	if err := a.Files.Restore(c.Request.Context(), fileID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      fileID,
		"deleted": false,
	})
}

func (a *API) FileRestoreBulk(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var req bulkRequest
	if !req.bind(c) {
		return
	}

	result, err := a.Files.RestoreMany(c.Request.Context(), req.IDs, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
