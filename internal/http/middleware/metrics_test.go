package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func exposition(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	return buf.String()
}

func TestMetricsSeparatesStreamsFromRequests(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	m := observability.Init(logger.Nop())
	if m == nil {
		t.Fatalf("metrics not initialized")
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	var duringStream string
	r.GET("/api/events", func(c *gin.Context) {
		duringStream = exposition(t, m)
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/api/products/1", "/api/products/2", "/api/events", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if !strings.Contains(duringStream, "sf_realtime_streams_open 1") {
		t.Fatalf("open stream not counted:\n%s", duringStream)
	}
	out := exposition(t, m)
	for _, want := range []string{
		`sf_api_requests_total{method="GET",route="/api/products/:id",status="200"} 2`,
		`sf_api_requests_total{method="GET",route="unmatched",status="404"} 1`,
		"sf_realtime_streams_open 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `route="/api/events"`) || strings.Contains(out, "wp-login") {
		t.Fatalf("stream or raw path leaked into request series:\n%s", out)
	}
}
