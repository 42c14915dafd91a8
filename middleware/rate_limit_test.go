package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimiterMiddleware(RateLimiterConfig{
		RequestsPerSecond: 1,
		Burst:             2,
	}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(ip string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	// Burst of 2 goes through, the third request in the same instant
	// gets rejected
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// A different client has its own bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestSweepVisitors(t *testing.T) {
	getVisitor("192.0.2.1", 1, 1)
	getVisitor("192.0.2.2", 1, 1)

	mu.Lock()
	v, ok := visitors["192.0.2.1"]
	require.True(t, ok)
	v.lastSeen = time.Now().Add(-time.Hour)
	mu.Unlock()

	sweepVisitors(3 * time.Minute)

	mu.Lock()
	defer mu.Unlock()

	_, stale := visitors["192.0.2.1"]
	_, fresh := visitors["192.0.2.2"]

	assert.False(t, stale)
	assert.True(t, fresh)
}
