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

	"github.com/noah-isme/class-attendance-api/pkg/config"
	"github.com/noah-isme/class-attendance-api/pkg/middleware/requestid"
)

func TestZapConfig(t *testing.T) {
	zc := zapConfig(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "console"}})
	assert.Equal(t, "console", zc.Encoding)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())
	assert.Equal(t, "timestamp", zc.EncoderConfig.TimeKey)

	zc = zapConfig(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "loud"}})
	assert.Equal(t, "json", zc.Encoding)
	assert.Equal(t, zapcore.InfoLevel, zc.Level.Level())
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	r.GET("/classes/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "missing":
			c.Status(http.StatusNotFound)
		case "broken":
			c.Status(http.StatusInternalServerError)
		default:
			c.Status(http.StatusOK)
		}
	})

	for _, id := range []string{"c1", "missing", "broken"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/classes/"+id, nil))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/classes/:id", fields["route"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
