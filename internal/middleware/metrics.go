package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/pkg/metrics"
)

// Metrics records per-route latency histograms. The route template is used
// instead of the raw path so IDs do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
