package middleware

import (
	"context"
	"time"

	awspkg "github.com/CharlesX20/chimestradingstore/pkg/aws"

	"github.com/gin-gonic/gin"
)

// Metrics publishes one CloudWatch batch per request, keyed by the matched
// route rather than the raw path.
func Metrics(metricsClient *awspkg.MetricsClient, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metricsClient.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  awspkg.StatusClass(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsClient.RecordRequest(ctx, status, elapsed, dims)
		}()
	}
}
