package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/class-attendance-api/pkg/config"
	"github.com/noah-isme/class-attendance-api/pkg/middleware/requestid"
)

const serviceName = "class-attendance-api"

// New builds the process logger. Every entry carries the service name and environment.
func New(cfg *config.Config) (*zap.Logger, error) {
	return zapConfig(cfg).Build(zap.Fields(
		zap.String("service", serviceName),
		zap.String("env", cfg.Env),
	))
}

// zapConfig picks production or development defaults by environment, then applies
// the configured encoding and level. An unparseable level falls back to info.
func zapConfig(cfg *config.Config) zap.Config {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zc = zap.NewProductionConfig()
	}

	zc.Encoding = "json"
	if cfg.Log.Format == "console" {
		zc.Encoding = "console"
	}

	level := zapcore.InfoLevel
	if cfg.Log.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc
}

// GinMiddleware writes one access log entry per request: error level for 5xx,
// warn for 4xx, info otherwise.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if ce := l.Check(levelForStatus(status), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
