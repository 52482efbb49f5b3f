package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
)

// CloudWatchMetrics records request count, latency and error count per
// service/method/path. Publishing happens off the request goroutine.
func CloudWatchMetrics(metrics *awspkg.MetricsClient, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		dims := map[string]string{
			"Service": service,
			"Method":  c.Request.Method,
			"Path":    c.FullPath(),
		}
		go func() {
			mctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.RecordCount(mctx, awspkg.MetricHTTPRequests, dims)
			_ = metrics.RecordLatency(mctx, awspkg.MetricHTTPLatency, dur, dims)
			if status >= 400 {
				_ = metrics.RecordCount(mctx, awspkg.MetricHTTPErrors, dims)
			}
		}()
	}
}
