package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(classificationTotal.WithLabelValues(OutcomeInvalidCategory))
	IncClassification(OutcomeInvalidCategory)
	after := testutil.ToFloat64(classificationTotal.WithLabelValues(OutcomeInvalidCategory))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestHandlerExposesRouteMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTP())
	r.GET("/documents/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/documents/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `healthdocs_http_requests_total{method="GET",route="/documents/:id",status="204"}`) {
		t.Fatalf("expected route-labelled request counter, got:\n%s", body)
	}
}
