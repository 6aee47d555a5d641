package middleware

import (
	"time"

	"estuary/services/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger tags each request with an id, stores a request scoped zap
// logger under "logger" and logs the outcome.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		logger := base.With(zap.String("requestID", requestID))
		c.Set("logger", logger)
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", getClientIP(c)),
		}
		if pid := PractitionerID(c); pid != "" {
			fields = append(fields, zap.String("practitionerID", pid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}

// ToastCollector attaches a per-request toast collector to the request context.
func ToastCollector() gin.HandlerFunc {
	return func(c *gin.Context) {
		collector := &notify.Collector{}
		c.Request = c.Request.WithContext(notify.WithCollector(c.Request.Context(), collector))
		c.Next()
	}
}
