package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs method, path, and status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(Logger(logger))
		router.GET("/cosmetics/:id", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		req, _ := http.NewRequest(http.MethodGet, "/cosmetics/skin-1", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "HTTP request", entry["msg"])
		assert.Equal(t, http.MethodGet, entry["method"])
		assert.Equal(t, "/cosmetics/skin-1", entry["path"])
		assert.Equal(t, float64(http.StatusNotFound), entry["status"])
		assert.NotContains(t, entry, "query")
	})

	t.Run("includes query string and correlation ID when present", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(CorrelationID(), Logger(logger))
		router.GET("/cosmetics", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req, _ := http.NewRequest(http.MethodGet, "/cosmetics?rarity=legendary", nil)
		req.Header.Set(CorrelationIDHeader, "corr-42")
		router.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-42", entry["correlation_id"])
		assert.Equal(t, "/cosmetics", entry["path"])
		assert.Equal(t, "rarity=legendary", entry["query"])
	})
}
