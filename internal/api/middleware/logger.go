package middleware

import (
	"time"

	"fes-bids/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := logger.WithFields(c.Request.Context(),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).Round(time.Microsecond).String(),
		)
		if len(c.Errors) > 0 {
			logger.Warnf(ctx, "request finished with errors: %s", c.Errors.String())
			return
		}
		logger.Info(ctx, "request served")
	}
}
