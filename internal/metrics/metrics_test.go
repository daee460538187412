package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationCountsStorageErrors(t *testing.T) {
	c := New("shelf")

	c.Operation("create", OutcomeOK)
	c.Operation("create", OutcomeDuplicate)
	c.Operation("list", OutcomeError)
	c.Operation("list", OutcomeError)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("create", OutcomeDuplicate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.StorageErrors.WithLabelValues("list")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.StorageErrors.WithLabelValues("create")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.Operation("create", OutcomeOK)
		c.HTTPRequest("GET", "/", 200, time.Millisecond)
		c.Rejected(RejectHost, "/")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New("shelf")
	c.HTTPRequest(http.MethodGet, "/", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shelf_http_requests_total"))
}

func TestRejectedByReason(t *testing.T) {
	c := New("shelf")

	c.Rejected(RejectRateLimited, "/add")
	c.Rejected(RejectRateLimited, "/add")
	c.Rejected(RejectCIDR, "/metrics")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Rejections.WithLabelValues(RejectRateLimited, "/add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues(RejectCIDR, "/metrics")))
}
