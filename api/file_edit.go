package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type fileEditRequest struct {
	Favorite *bool `json:"favorite"`
}

// FileEdit updates the mutable flags of a file. Only favorite for now.
func (a *API) FileEdit(c *gin.Context) {
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

	var req fileEditRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Favorite == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if err := a.Files.SetFavorite(fileID, userID, *req.Favorite); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       fileID,
		"favorite": *req.Favorite,
	})
}
