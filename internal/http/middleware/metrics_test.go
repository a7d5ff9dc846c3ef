package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsRequestsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/ping", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	after := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/ping", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to advance by 1, got %v -> %v", before, after)
	}
}

func TestEventCounters(t *testing.T) {
	receivedBefore := testutil.ToFloat64(eventsReceived.WithLabelValues("message"))
	dupBefore := testutil.ToFloat64(eventsDuplicate)
	failBefore := testutil.ToFloat64(eventsFailed)

	CountEventReceived("message")
	CountEventDuplicate()
	CountEventFailed()

	if got := testutil.ToFloat64(eventsReceived.WithLabelValues("message")); got != receivedBefore+1 {
		t.Fatalf("received counter did not advance: %v", got)
	}
	if got := testutil.ToFloat64(eventsDuplicate); got != dupBefore+1 {
		t.Fatalf("duplicate counter did not advance: %v", got)
	}
	if got := testutil.ToFloat64(eventsFailed); got != failBefore+1 {
		t.Fatalf("failed counter did not advance: %v", got)
	}
}
