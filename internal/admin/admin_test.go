package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SyedDaiam9101/classifier-service/internal/metrics"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProbesFollowHealthStatus(t *testing.T) {
	hs := health.NewServer()
	mux := NewMux(hs)

	w := get(mux, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, http.StatusOK, get(mux, "/readyz").Code)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	w = get(mux, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = get(mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Not Ready", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordPrediction(1)
	metrics.SetHealthy()

	w := get(NewMux(health.NewServer()), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `predictions_total{class="1"}`)
	assert.Contains(t, w.Body.String(), "health_status 1")
}
