package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FilePurge permanently deletes a trashed file, its thumbnail and
// their ciphertext. There is no undo past this point.
func (a *API) FilePurge(c *gin.Context) {
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

	if err := a.Files.PermanentDelete(c.Request.Context(), fileID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     fileID,
		"purged": true,
	})
}

func (a *API) FilePurgeBulk(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var req bulkRequest
	if !req.bind(c) {
		return
	}

	result, err := a.Files.PermanentDeleteMany(c.Request.Context(), req.IDs, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
