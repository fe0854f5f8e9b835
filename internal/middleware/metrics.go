package middleware

import (
	"time"

	"account-hub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records a counter and latency sample per request. The
// route template (c.FullPath) is used as the path label so ids don't blow up
// cardinality.
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		collector.RecordRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
