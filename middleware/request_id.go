package middleware

import (
	"bitwise74/drive-api/util"

	"github.com/gin-gonic/gin"
)

// RequestID tags every request with a short random ID that's echoed
// back in error responses so users can report failures precisely.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.RandStr(8)

		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
