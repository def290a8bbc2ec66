package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"foodrec/internal/log"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs every request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(log.ContextWithRequestID(c.Request.Context(), rid))

		c.Next()

		logger := log.WithContext(c.Request.Context(), log.WithComponent("http"))
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}
