package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCitationChecks_Counters(t *testing.T) {
	p := NewProvider(Config{})
	p.CitationChecks(3, 1)
	p.CitationChecks(2, 0)

	if got := p.GetCounter("citation_checks_total", "verified"); got != 5 {
		t.Errorf("verified = %d, want 5", got)
	}
	if got := p.GetCounter("citation_checks_total", "unverified"); got != 1 {
		t.Errorf("unverified = %d, want 1", got)
	}
}

func TestAlertFired_Counters(t *testing.T) {
	p := NewProvider(Config{})
	p.AlertFired("renal_function_decline")
	p.AlertFired("renal_function_decline")
	p.AlertFired("missed_anticoagulation")

	if got := p.GetCounter("pattern_alerts_fired_total", "renal_function_decline"); got != 2 {
		t.Errorf("renal count = %d, want 2", got)
	}
	if got := p.GetCounter("pattern_alerts_fired_total", "missed_anticoagulation"); got != 1 {
		t.Errorf("anticoag count = %d, want 1", got)
	}
}

func TestNilProvider_Safe(t *testing.T) {
	var p *Provider
	p.CitationChecks(1, 1)
	p.AlertFired("renal_function_decline")
	p.SetDBPoolStats(1, 1)
	if got := p.GetCounter("citation_checks_total", "verified"); got != 0 {
		t.Errorf("nil provider counter = %d, want 0", got)
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	p := NewProvider(Config{})
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/api/v1/patients/:id/alerts", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/123/alerts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	key := "GET|/api/v1/patients/:id/alerts|200"
	p.histMu.RLock()
	h := p.histograms[key]
	p.histMu.RUnlock()
	if h == nil {
		t.Fatalf("expected histogram for key %q", key)
	}
	if h.Count() != 1 {
		t.Errorf("observation count = %d, want 1", h.Count())
	}
}

func TestPrometheusHandler_Exposition(t *testing.T) {
	p := NewProvider(Config{})
	p.CitationChecks(4, 2)
	p.AlertFired("occult_malignancy_workup")

	e := echo.New()
	e.GET("/metrics", p.PrometheusHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		`citation_checks_total{result="verified"} 4`,
		`citation_checks_total{result="unverified"} 2`,
		`pattern_alerts_fired_total{alert_type="occult_malignancy_workup"} 1`,
		"# TYPE http_server_active_requests gauge",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestHistogram_CumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{0.1, 0.5, 1.0})
	h.Observe(0.05)
	h.Observe(0.3)
	h.Observe(0.7)
	h.Observe(5.0) // beyond all boundaries

	cum := h.cumulativeBuckets()
	want := []int64{1, 2, 3}
	for i := range want {
		if cum[i] != want[i] {
			t.Errorf("bucket[%d] = %d, want %d", i, cum[i], want[i])
		}
	}
	if h.Count() != 4 {
		t.Errorf("count = %d, want 4", h.Count())
	}
	if h.Sum() < 6.04 || h.Sum() > 6.06 {
		t.Errorf("sum = %g, want ~6.05", h.Sum())
	}
}

func TestResource_Defaults(t *testing.T) {
	p := NewProvider(Config{})
	res := p.Resource()
	if res["service.name"] != "chartguard-server" {
		t.Errorf("service.name = %q", res["service.name"])
	}
	if res["deployment.environment"] != "development" {
		t.Errorf("environment = %q", res["deployment.environment"])
	}
}
