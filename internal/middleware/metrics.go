package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerlens/internal/metrics"
)

// Metrics records per-request counters and latency histograms. The route
// pattern (c.FullPath) is used as the path label so parameterized routes do
// not explode the cardinality; unmatched requests are labeled "unmatched".
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.RequestStarted()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestFinished(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
