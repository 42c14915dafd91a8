package api

import (
	"errors"
	"net/http"

	"bitwise74/drive-api/security"
	"bitwise74/drive-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortWithError translates service errors into HTTP responses.
// Unknown errors become a generic 500 so internals never leak to users.
func abortWithError(c *gin.Context, err error) {
	requestID := c.MustGet("requestID").(string)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrPreconditionFailed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "File is in the wrong state for this operation",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrQuotaExceeded):
		c.AbortWithStatusJSON(http.StatusInsufficientStorage, gin.H{
			"error":     "Storage quota exceeded",
			"requestID": requestID,
		})
	case errors.Is(err, security.ErrIntegrityCheckFailed):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "File failed its integrity check",
			"requestID": requestID,
		})

		zap.L().Error("Integrity check failed", zap.Error(err), zap.String("requestID", requestID))
	case errors.Is(err, service.ErrStorageUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Storage unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Storage unavailable", zap.Error(err), zap.String("requestID", requestID))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Unhandled error", zap.Error(err), zap.String("requestID", requestID))
	}
}
