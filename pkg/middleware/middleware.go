// Package middleware provides the Gin middleware used by the
// client-facing HTTP API: request/trace id injection, structured
// logging, panic recovery and CORS.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// RequestIDKey is the gin.Context key holding the per-request id.
const RequestIDKey = "request_id"

// TraceIDKey is the gin.Context key holding the trace id.
const TraceIDKey = "trace_id"

// SpanIDKey is the gin.Context key holding the span id.
const SpanIDKey = "span_id"

// Context keys are plain strings because pkg/logger looks the trace and
// span ids up by these string keys.
const (
	requestIDContextKey = "request_id"
	traceIDContextKey   = "trace_id"
	spanIDContextKey    = "span_id"
)

// GinLoggingMiddleware logs request start/completion with request/trace ids.
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		spanID := uuid.New().String()

		c.Set(RequestIDKey, requestID)
		c.Set(TraceIDKey, traceID)
		c.Set(SpanIDKey, spanID)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		clientIP := c.ClientIP()

		ctx := context.WithValue(c.Request.Context(), traceIDContextKey, traceID)
		ctx = context.WithValue(ctx, spanIDContextKey, spanID)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		logger.Info(ctx, "http request started",
			"request_id", requestID,
			"method", method,
			"path", path,
			"client_ip", clientIP,
		)

		c.Next()

		duration := time.Since(start)
		logger.Info(ctx, "http request completed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"duration", duration,
		)
	}
}

// GinRecoveryMiddleware recovers from a panic in a later handler and
// responds with a 500 carrying the request id.
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID, _ := c.Get(RequestIDKey)

				ctx := c.Request.Context()
				logger.Error(ctx, "http request panicked",
					"request_id", requestID,
					"panic", err,
				)

				c.JSON(500, gin.H{
					"error":      "internal server error",
					"request_id": requestID,
				})
			}
		}()
		c.Next()
	}
}

// GinCORSMiddleware allows any origin; the client API has no cookie-based auth.
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
