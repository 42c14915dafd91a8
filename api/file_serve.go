package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileServe decrypts a stored object and serves it inline. Thumbnail
// ids resolve through the same route as primary files.
func (a *API) FileServe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	objectID := c.Param("id")
	if objectID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	data, mime, err := a.Files.Retrieve(c.Request.Context(), objectID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, mime, data)
}

// FileThumbnail serves the decrypted preview of a file, when one exists.
func (a *API) FileThumbnail(c *gin.Context) {
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

	data, mime, err := a.Files.RetrieveThumbnail(c.Request.Context(), fileID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, mime, data)
}
