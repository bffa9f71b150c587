package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/observability"
)

// streamRoutes hold connections open for minutes; they are counted as open streams
// rather than observed as request latency.
var streamRoutes = map[string]bool{
	"/api/events": true,
}

// Metrics records request count and latency per matched route. Requests that match no
// route share the "unmatched" label so probing random paths cannot mint new series.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if streamRoutes[route] {
			m.StreamOpened()
			defer m.StreamClosed()
			c.Next()
			return
		}

		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
