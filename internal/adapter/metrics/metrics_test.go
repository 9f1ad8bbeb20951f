package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestService_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.ObserveRequest(http.MethodPost, "success", http.StatusOK, 120*time.Millisecond)
	svc.ObserveRequest(http.MethodPost, "success", http.StatusOK, 80*time.Millisecond)
	svc.ObserveRequest(http.MethodGet, "invalid_token", 0, time.Millisecond)
	svc.ObserveRequest(http.MethodGet, "", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.requestsTotal.WithLabelValues("POST", "success", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.requestsTotal.WithLabelValues("GET", "invalid_token", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.requestsTotal.WithLabelValues("GET", "error", "0")))
	assert.Equal(t, 3, testutil.CollectAndCount(svc.requestDuration))
}

func TestService_SandboxCounters(t *testing.T) {
	svc := NewService(prometheus.NewRegistry())

	svc.RecordVerification("ok")
	svc.RecordVerification("replayed_nonce")
	svc.RecordVerification("ok")
	svc.RecordHTTPRequest(http.MethodGet, http.StatusUnauthorized)
	svc.RecordPanic()

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.verificationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.verificationsTotal.WithLabelValues("replayed_nonce")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.httpRequestsTotal.WithLabelValues("GET", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.httpPanicsTotal))
}

func TestNewService_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewService(prometheus.NewRegistry())
		NewService(prometheus.NewRegistry())
	})
}
