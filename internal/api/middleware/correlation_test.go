package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correlationRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/cosmetics", func(c *gin.Context) {
		*captured = GetCorrelationID(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestCorrelationID(t *testing.T) {
	t.Run("issues a fresh UUID when the header is absent", func(t *testing.T) {
		var captured string
		router := correlationRouter(&captured)

		req, _ := http.NewRequest(http.MethodGet, "/cosmetics", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		headerID := rr.Header().Get(CorrelationIDHeader)
		require.NotEmpty(t, headerID)
		_, err := uuid.Parse(headerID)
		assert.NoError(t, err)
		assert.Equal(t, headerID, captured)
	})

	t.Run("honors a caller-supplied correlation ID", func(t *testing.T) {
		var captured string
		router := correlationRouter(&captured)

		req, _ := http.NewRequest(http.MethodGet, "/cosmetics", nil)
		req.Header.Set(CorrelationIDHeader, "upstream-id-123")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "upstream-id-123", rr.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "upstream-id-123", captured)
	})
}

func TestGetCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns empty when the middleware did not run", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Empty(t, GetCorrelationID(c))
	})

	t.Run("returns empty for a non-string value", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(CorrelationIDKey, 42)
		assert.Empty(t, GetCorrelationID(c))
	})
}
