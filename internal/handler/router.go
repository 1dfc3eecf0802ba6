package handler

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/SyedDaiam9101/classifier-service/internal/middleware"
)

// Options toggles optional transport features.
type Options struct {
	Gzip    bool
	Tracing bool
}

// NewRouter builds the HTTP API. POST /predict is the only route.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Metrics(),
		middleware.Recovery(),
	)
	if opts.Gzip {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	r.POST("/predict", h.Predict)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})
	return r
}

// NewGRPCServer builds the gRPC server with the classifier and health
// services registered.
func NewGRPCServer(h *Handler, healthServer *health.Server, opts Options) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.UnaryRequestIDInterceptor(),
		middleware.UnaryMetricsInterceptor(),
	}
	if opts.Tracing {
		interceptors = append(interceptors, otelgrpc.UnaryServerInterceptor())
	}
	interceptors = append(interceptors, middleware.UnaryRecoveryInterceptor())

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterClassifierServer(s, h.GRPC())
	healthpb.RegisterHealthServer(s, healthServer)

	// Enable server reflection for debugging
	reflection.Register(s)
	return s
}
