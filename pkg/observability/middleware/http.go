package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request counts and durations on the OTEL meter,
// labelled by the matched route template rather than the raw path.
func HTTPMetrics(meter metric.Meter, serviceName string) gin.HandlerFunc {
	requestDuration, _ := meter.Float64Histogram(
		fmt.Sprintf("unibox_%s_request_duration_seconds", serviceName),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)

	requestsTotal, _ := meter.Int64Counter(
		fmt.Sprintf("unibox_%s_requests_total", serviceName),
		metric.WithDescription("Total HTTP requests"),
	)

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status", c.Writer.Status()),
		)

		ctx := c.Request.Context()
		requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		requestsTotal.Add(ctx, 1, attrs)
	}
}
