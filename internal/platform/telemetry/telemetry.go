// Package telemetry provides lightweight observability for chartguard:
// counters, gauges, request-duration histograms, and a Prometheus text
// exposition endpoint, all without pulling in a metrics SDK.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "chartguard-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// defaultDurationBuckets are the histogram bucket boundaries (in seconds)
// used for HTTP request duration.
var defaultDurationBuckets = []float64{
	0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
}

// histogram is a thread-safe histogram with fixed bucket boundaries.
// Bucket counts are non-cumulative in storage; cumulative counts are
// computed at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits for atomic add
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			h.mu.Unlock()
			return
		}
	}
	// Beyond all boundaries; counted only in +Inf at export.
	h.mu.Unlock()
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	cum := make([]int64, len(raw))
	var running int64
	for i, c := range raw {
		running += c
		cum[i] = running
	}
	return cum
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(newVal)) {
			return
		}
	}
}

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{items: make(map[string]*int64)}
}

func (s *counterStore) add(key string, n int64) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, n)
		return
	}
	s.mu.Lock()
	p, ok = s.items[key]
	if !ok {
		v := n
		s.items[key] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, n)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *counterStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

type gaugeStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newGaugeStore() *gaugeStore {
	return &gaugeStore{items: make(map[string]*int64)}
}

func (s *gaugeStore) add(name string, delta int64) {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, delta)
		return
	}
	s.mu.Lock()
	p, ok = s.items[name]
	if !ok {
		v := delta
		s.items[name] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, delta)
}

func (s *gaugeStore) set(name string, val int64) {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if ok {
		atomic.StoreInt64(p, val)
		return
	}
	s.mu.Lock()
	p, ok = s.items[name]
	if !ok {
		v := val
		s.items[name] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.StoreInt64(p, val)
}

func (s *gaugeStore) get(name string) int64 {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

// Provider manages all observability state.
type Provider struct {
	cfg Config

	histMu     sync.RWMutex
	histograms map[string]*histogram

	counters *counterStore
	gauges   *gaugeStore
}

// NewProvider creates and initialises the telemetry provider.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:        cfg,
		histograms: make(map[string]*histogram),
		counters:   newCounterStore(),
		gauges:     newGaugeStore(),
	}
}

// Resource returns the service identity attributes.
func (p *Provider) Resource() map[string]string {
	return map[string]string{
		"service.name":           p.cfg.ServiceName,
		"service.version":        p.cfg.ServiceVersion,
		"deployment.environment": p.cfg.Environment,
	}
}

func (p *Provider) getOrCreateHistogram(key string, boundaries []float64) *histogram {
	p.histMu.RLock()
	h, ok := p.histograms[key]
	p.histMu.RUnlock()
	if ok {
		return h
	}
	p.histMu.Lock()
	h, ok = p.histograms[key]
	if !ok {
		h = newHistogram(boundaries)
		p.histograms[key] = h
	}
	p.histMu.Unlock()
	return h
}

// CitationChecks records citation verification outcomes. Safe on a nil
// provider so services can run without telemetry wired.
func (p *Provider) CitationChecks(verified, unverified int) {
	if p == nil {
		return
	}
	if verified > 0 {
		p.counters.add("citation_checks_total|verified", int64(verified))
	}
	if unverified > 0 {
		p.counters.add("citation_checks_total|unverified", int64(unverified))
	}
}

// AlertFired records a detector firing, labeled by alert type.
func (p *Provider) AlertFired(alertType string) {
	if p == nil {
		return
	}
	p.counters.add("pattern_alerts_fired_total|"+alertType, 1)
}

// GetCounter returns the current value of a counter keyed by name and label
// value. Exposed for tests.
func (p *Provider) GetCounter(name, label string) int64 {
	if p == nil {
		return 0
	}
	return p.counters.get(name + "|" + label)
}

// SetDBPoolStats updates the database pool gauges.
func (p *Provider) SetDBPoolStats(active, idle int64) {
	if p == nil {
		return
	}
	p.gauges.set("db_pool_active_connections", active)
	p.gauges.set("db_pool_idle_connections", idle)
}

// MetricsMiddleware records HTTP server metrics per route.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.gauges.add("http_server_active_requests", 1)
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			p.gauges.add("http_server_active_requests", -1)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			key := c.Request().Method + "|" + route + "|" + fmt.Sprintf("%d", c.Response().Status)
			p.getOrCreateHistogram(key, defaultDurationBuckets).Observe(duration)

			return err
		}
	}
}

// PrometheusHandler serves metrics in Prometheus text exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		p.histMu.RLock()
		hists := make(map[string]*histogram, len(p.histograms))
		for k, v := range p.histograms {
			hists[k] = v
		}
		p.histMu.RUnlock()
		for key, h := range hists {
			parts := strings.SplitN(key, "|", 3)
			if len(parts) != 3 {
				continue
			}
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeHistogram(&b, "http_server_request_duration_seconds", labels, h)
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", p.gauges.get("http_server_active_requests"))

		counters := p.counters.snapshot()
		b.WriteString("# HELP citation_checks_total Citation checks by verification result.\n")
		b.WriteString("# TYPE citation_checks_total counter\n")
		writeLabeledCounters(&b, counters, "citation_checks_total", "result")
		b.WriteByte('\n')

		b.WriteString("# HELP pattern_alerts_fired_total Pattern alerts fired by alert type.\n")
		b.WriteString("# TYPE pattern_alerts_fired_total counter\n")
		writeLabeledCounters(&b, counters, "pattern_alerts_fired_total", "alert_type")
		b.WriteByte('\n')

		for _, g := range []struct {
			name string
			help string
		}{
			{"db_pool_active_connections", "Number of active database pool connections."},
			{"db_pool_idle_connections", "Number of idle database pool connections."},
		} {
			fmt.Fprintf(&b, "# HELP %s %s\n", g.name, g.help)
			fmt.Fprintf(&b, "# TYPE %s gauge\n", g.name)
			fmt.Fprintf(&b, "%s %d\n\n", g.name, p.gauges.get(g.name))
		}

		return c.String(http.StatusOK, b.String())
	}
}

func writeLabeledCounters(b *strings.Builder, counters map[string]int64, name, labelName string) {
	prefix := name + "|"
	for key, val := range counters {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		fmt.Fprintf(b, "%s{%s=%q} %d\n", name, labelName, key[len(prefix):], val)
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()

	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}
