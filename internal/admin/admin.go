// Package admin serves the operational endpoints: Prometheus metrics and
// liveness/readiness probes backed by the gRPC health server.
package admin

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewMux returns the admin HTTP handler.
func NewMux(healthServer *health.Server) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", probe(healthServer, "OK", "Service Unavailable"))
	// Readiness mirrors health: the model is loaded before serving starts.
	mux.HandleFunc("/readyz", probe(healthServer, "Ready", "Not Ready"))

	return mux
}

func probe(healthServer *health.Server, ok, notOK string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := healthServer.Check(r.Context(), &healthpb.HealthCheckRequest{})
		if err != nil || resp.Status != healthpb.HealthCheckResponse_SERVING {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(notOK))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(ok))
	}
}
