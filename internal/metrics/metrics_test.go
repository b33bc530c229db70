package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperationCountsByOutcome(t *testing.T) {
	m := New()
	m.ObserveOperation("sale.mark", "ok", 3*time.Millisecond)
	m.ObserveOperation("sale.mark", "ok", 2*time.Millisecond)
	m.ObserveOperation("sale.mark", "business_rule", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("sale.mark", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("sale.mark", "business_rule")))
}

func TestHandlerExposesRegisteredSeries(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/healthz", "200")
	m.ObserveEvent("sale.created", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `retailpos_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, string(body), `retailpos_events_published_total{event_type="sale.created",outcome="ok"} 1`)
}
