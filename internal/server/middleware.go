package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pk-market-chat/internal/common/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// requestID tags each request with an id, reusing the caller's when given,
// and stores a logger carrying it.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Set(loggerKey, s.logger.With(map[string]interface{}{"requestId": id}))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLogger(c, s.logger).Info("request completed", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}

func requestLogger(c *gin.Context, fallback logger.Logger) logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(logger.Logger); ok {
			return l
		}
	}
	return fallback
}
