// internal/middleware/metrics.go
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/classifier-service/internal/metrics"
)

// UnaryMetricsInterceptor records Prometheus histogram metrics for gRPC unary calls.
// It measures the duration of each call and records it with method and status code labels.
func UnaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		// status.Code maps nil to OK and non-status errors to Unknown
		metrics.RecordGRPCLatency(info.FullMethod, status.Code(err).String(), time.Since(start).Seconds())

		return resp, err
	}
}

// Metrics records request latency for the HTTP API by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPLatency(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
