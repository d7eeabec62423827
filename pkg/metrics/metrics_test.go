package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func scrape(t *testing.T) string {
	t.Helper()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("DELETE", "/remove", 401, time.Millisecond)
	ObserveRequest("DELETE", "/remove", 401, time.Millisecond)

	body := scrape(t)

	if !strings.Contains(body, `http_requests_total{method="DELETE",route="/remove",status="401"} 2`) {
		t.Errorf("exposition missing request counter:\n%s", body)
	}
	if !strings.Contains(body, `http_request_duration_seconds_count{method="DELETE",route="/remove"} 2`) {
		t.Errorf("exposition missing duration histogram:\n%s", body)
	}
}
