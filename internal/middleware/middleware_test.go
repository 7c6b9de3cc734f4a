package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://admin.partsflip.test, https://partsflip.test"))
	r.PATCH("/x", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "https://admin.partsflip.test")
	r.ServeHTTP(w, req)
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "https://admin.partsflip.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	w = httptest.NewRecorder()
	req = httptest.NewRequest("PATCH", "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup("info", "json", &buf)
	t.Cleanup(func() { logger.Setup("info", "json", nil) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.POST("/api/v1/reports", func(c *gin.Context) { c.Status(422) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(`{"reason":"x","token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	require.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	out := buf.String()
	assert.Contains(t, out, `"requestId":"req-1"`)
	assert.Contains(t, out, `"status":422`)
	assert.Contains(t, out, `********`)
	assert.NotContains(t, out, `"abc"`)
}

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
