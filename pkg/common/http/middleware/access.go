package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// RequestID propagates X-Request-Id, minting one when the client sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constraints.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constraints.ContextKeyRequestID, id)
		c.Header(constraints.HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		scheme := "http"
		if isSecure(c.Request) {
			scheme = "https"
		}

		logger.Info("",
			zap.String("dateTime", start.UTC().Format(time.RFC1123)),
			zap.String("requestId", c.GetString(constraints.ContextKeyRequestID)),
			zap.String("httpScheme", scheme),
			zap.String("httpProto", c.Request.Proto),
			zap.String("httpMethod", c.Request.Method),
			zap.String("remoteAddr", c.Request.RemoteAddr),
			zap.String("uri", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Duration("lat", time.Since(start)),
			zap.Int("responseSize", c.Writer.Size()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
