// Package middleware provides request logging and session authentication
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/giftlist-api/internal/logger"
)

const (
	// RequestIDKey is the context key and response header carrying the request id
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger returns a middleware function that logs request details
func RequestLogger() gin.HandlerFunc {
	log := logger.HTTP()

	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log.Debug("Request started",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		logLevel := log.Info
		if status >= 500 {
			logLevel = log.Error
		} else if status >= 400 {
			logLevel = log.Warn
		}

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Err)
		}
		logLevel("Request completed", fields...)
	}
}
