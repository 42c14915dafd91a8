package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type bulkRequest struct {
	IDs []string `json:"ids"`
}

func (r *bulkRequest) bind(c *gin.Context) bool {
	requestID := c.MustGet("requestID").(string)

	if err := c.ShouldBindJSON(r); err != nil || len(r.IDs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file IDs provided",
			"requestID": requestID,
		})
		return false
	}

	return true
}

// FileDelete moves a file to the trash. The file keeps counting
// against the owner's quota until it's purged.
func (a *API) FileDelete(c *gin.Context) {
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

	if err := a.Files.SoftDelete(c.Request.Context(), fileID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      fileID,
		"deleted": true,
	})
}

func (a *API) FileDeleteBulk(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var req bulkRequest
	if !req.bind(c) {
		return
	}

	result, err := a.Files.SoftDeleteMany(c.Request.Context(), req.IDs, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
