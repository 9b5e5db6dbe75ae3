package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// requestLog serves one request through GinMiddleware and returns the
// recorded "HTTP Request" entry
func requestLog(t *testing.T, handler gin.HandlerFunc, req *http.Request, pre ...gin.HandlerFunc) (*httptest.ResponseRecorder, observer.LoggedEntry) {
	t.Helper()

	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	for _, mw := range pre {
		router.Use(mw)
	}
	router.Use(GinMiddleware(zap.New(core)))
	router.Handle(req.Method, req.URL.Path, handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return w, entry
		}
	}
	require.FailNow(t, "no HTTP Request entry logged")
	return w, observer.LoggedEntry{}
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func TestGinMiddleware(t *testing.T) {
	t.Run("successful request logged at info", func(t *testing.T) {
		w, entry := requestLog(t, ok, httptest.NewRequest("GET", "/materials", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/materials", fields["path"])
		assert.Contains(t, fields, "status")
		assert.Contains(t, fields, "latency")
		assert.Contains(t, fields, "client_ip")
	})

	t.Run("4xx logged as warning", func(t *testing.T) {
		_, entry := requestLog(t, func(c *gin.Context) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "quantity must be positive"})
		}, httptest.NewRequest("POST", "/batches", nil))

		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	})

	t.Run("5xx logged as error", func(t *testing.T) {
		_, entry := requestLog(t, func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
		}, httptest.NewRequest("GET", "/batches", nil))

		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})

	t.Run("carries request id and operator", func(t *testing.T) {
		seed := func(c *gin.Context) {
			c.Set("request_id", "req-7")
			c.Set("operator", "alice")
			c.Next()
		}
		_, entry := requestLog(t, ok, httptest.NewRequest("GET", "/materials", nil), seed)

		fields := entry.ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
		assert.Equal(t, "alice", fields["operator"])
	})

	t.Run("query string only logged when present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/materials", nil)
		req.URL.RawQuery = "category=fabric&page=1"
		_, entry := requestLog(t, ok, req)
		assert.Contains(t, entry.ContextMap()["query"], "category=fabric")

		_, entry = requestLog(t, ok, httptest.NewRequest("GET", "/materials", nil))
		assert.NotContains(t, entry.ContextMap(), "query")
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("nil batch line")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotEmpty(t, recorded.All())
	entry := recorded.All()[0]
	assert.Equal(t, "Panic recovered", entry.Message)
	assert.Contains(t, entry.ContextMap(), "stacktrace")
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns the request-scoped logger", func(t *testing.T) {
		var got *zap.Logger
		_, _ = requestLog(t, func(c *gin.Context) {
			got = GetGinLogger(c)
			ok(c)
		}, httptest.NewRequest("GET", "/materials", nil))

		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		router := gin.New()
		var got *zap.Logger
		router.GET("/bare", func(c *gin.Context) {
			got = GetGinLogger(c)
			ok(c)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/bare", nil))

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("still fine") })
	})
}
