package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-attendance-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so arbitrary URLs do not become label values.
const unmatchedRoute = "unmatched"

// Metrics observes request counts and latency by route pattern. The scrape endpoint itself is skipped.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
