package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-accounts-service/pkg/metrics"
)

// Metrics records request count and latency per matched route.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
