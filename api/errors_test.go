package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitwise74/drive-api/security"
	"bitwise74/drive-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"precondition failed", service.ErrPreconditionFailed, http.StatusConflict},
		{"quota exceeded", service.ErrQuotaExceeded, http.StatusInsufficientStorage},
		{"integrity check failed", security.ErrIntegrityCheckFailed, http.StatusUnprocessableEntity},
		{"storage unavailable", service.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"wrapped sentinel", fmt.Errorf("failed to look up file, %w", service.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set("requestID", "test")

			abortWithError(c, tt.err)

			assert.Equal(t, tt.want, rec.Code)
			assert.True(t, c.IsAborted())
			assert.Contains(t, rec.Body.String(), "requestID")
		})
	}
}
