// Package metrics records client and scan-module activity.
// Collector is backend-neutral; PrometheusCollector serves it on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Collector is the interface for collecting and reporting metrics.
type Collector interface {
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)

	GaugeSet(name string, value float64, labels ...string)
	GaugeInc(name string, labels ...string)
	GaugeDec(name string, labels ...string)

	HistogramObserve(name string, value float64, labels ...string)

	// Handler returns an HTTP handler for the metrics endpoint.
	Handler() http.Handler
}

// MetricType represents the type of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// MetricDefinition defines a metric with its metadata.
type MetricDefinition struct {
	Name    string     `json:"name"`
	Type    MetricType `json:"type"`
	Help    string     `json:"help"`
	Labels  []string   `json:"labels,omitempty"`
	Buckets []float64  `json:"buckets,omitempty"`
}

// Outcome label values for scan and action metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
	OutcomeBusy     = "busy"
)

var (
	// Client metrics
	ClientRequestsTotal = MetricDefinition{
		Name:   "cybershield_client_requests_total",
		Type:   MetricTypeCounter,
		Help:   "Requests sent to the scanning service",
		Labels: []string{"method", "endpoint", "status"},
	}
	ClientRequestDuration = MetricDefinition{
		Name:    "cybershield_client_request_duration_seconds",
		Type:    MetricTypeHistogram,
		Help:    "Round-trip time of scanning service requests",
		Labels:  []string{"method", "endpoint"},
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	ClientRetriesTotal = MetricDefinition{
		Name:   "cybershield_client_retries_total",
		Type:   MetricTypeCounter,
		Help:   "Read requests retried after a transient failure",
		Labels: []string{"endpoint"},
	}

	// Module metrics
	ScansTotal = MetricDefinition{
		Name:   "cybershield_scans_total",
		Type:   MetricTypeCounter,
		Help:   "Scan actions by module and outcome",
		Labels: []string{"module", "outcome"},
	}
	ScanResultsTotal = MetricDefinition{
		Name:   "cybershield_scan_results_total",
		Type:   MetricTypeCounter,
		Help:   "Completed scans by module and threat level",
		Labels: []string{"module", "threat_level"},
	}
	ScansInFlight = MetricDefinition{
		Name:   "cybershield_scans_in_flight",
		Type:   MetricTypeGauge,
		Help:   "Scans currently awaiting a response",
		Labels: []string{"module"},
	}
	HistoryEntries = MetricDefinition{
		Name:   "cybershield_history_entries",
		Type:   MetricTypeGauge,
		Help:   "History entries held locally per module",
		Labels: []string{"module"},
	}
	HistoryClearsTotal = MetricDefinition{
		Name:   "cybershield_history_clears_total",
		Type:   MetricTypeCounter,
		Help:   "History clear actions by module and outcome",
		Labels: []string{"module", "outcome"},
	}
	PhoneReportsTotal = MetricDefinition{
		Name:   "cybershield_phone_reports_total",
		Type:   MetricTypeCounter,
		Help:   "Phone number reports submitted",
		Labels: []string{"outcome"},
	}
	ExportsTotal = MetricDefinition{
		Name:   "cybershield_exports_total",
		Type:   MetricTypeCounter,
		Help:   "Local report exports by format and outcome",
		Labels: []string{"format", "outcome"},
	}
	AnalyticsFallbacksTotal = MetricDefinition{
		Name:   "cybershield_analytics_fallbacks_total",
		Type:   MetricTypeCounter,
		Help:   "Analytics reads that fell back to zeroed defaults",
		Labels: []string{},
	}
)

// AllDefinitions returns every metric the SDK records.
func AllDefinitions() []MetricDefinition {
	return []MetricDefinition{
		ClientRequestsTotal,
		ClientRequestDuration,
		ClientRetriesTotal,
		ScansTotal,
		ScanResultsTotal,
		ScansInFlight,
		HistoryEntries,
		HistoryClearsTotal,
		PhoneReportsTotal,
		ExportsTotal,
		AnalyticsFallbacksTotal,
	}
}

// RecordRequest records one service request.
func RecordRequest(c Collector, method, endpoint string, status int, d time.Duration) {
	if c == nil {
		return
	}
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	c.CounterInc(ClientRequestsTotal.Name, "method", method, "endpoint", endpoint, "status", statusLabel)
	c.HistogramObserve(ClientRequestDuration.Name, d.Seconds(), "method", method, "endpoint", endpoint)
}

// NopCollector is a no-op metrics collector that discards all metrics.
type NopCollector struct{}

func (c *NopCollector) CounterInc(name string, labels ...string)                      {}
func (c *NopCollector) CounterAdd(name string, value float64, labels ...string)       {}
func (c *NopCollector) GaugeSet(name string, value float64, labels ...string)         {}
func (c *NopCollector) GaugeInc(name string, labels ...string)                        {}
func (c *NopCollector) GaugeDec(name string, labels ...string)                        {}
func (c *NopCollector) HistogramObserve(name string, value float64, labels ...string) {}
func (c *NopCollector) Handler() http.Handler                                         { return http.NotFoundHandler() }

// OrNop returns c, or a NopCollector when c is nil.
func OrNop(c Collector) Collector {
	if c == nil {
		return &NopCollector{}
	}
	return c
}

// InMemoryCollector stores metrics in memory for tests.
type InMemoryCollector struct {
	mu         sync.RWMutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (c *InMemoryCollector) key(name string, labels []string) string {
	key := name
	for i := 0; i+1 < len(labels); i += 2 {
		key += "," + labels[i] + "=" + labels[i+1]
	}
	return key
}

func (c *InMemoryCollector) CounterInc(name string, labels ...string) {
	c.CounterAdd(name, 1, labels...)
}

func (c *InMemoryCollector) CounterAdd(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[c.key(name, labels)] += value
}

func (c *InMemoryCollector) GaugeSet(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)] = value
}

func (c *InMemoryCollector) GaugeInc(name string, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)]++
}

func (c *InMemoryCollector) GaugeDec(name string, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)]--
}

func (c *InMemoryCollector) HistogramObserve(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(name, labels)
	c.histograms[key] = append(c.histograms[key], value)
}

func (c *InMemoryCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}

// GetCounter returns the value of a counter.
func (c *InMemoryCollector) GetCounter(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[c.key(name, labels)]
}

// GetGauge returns the value of a gauge.
func (c *InMemoryCollector) GetGauge(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gauges[c.key(name, labels)]
}

// GetHistogram returns all observations of a histogram.
func (c *InMemoryCollector) GetHistogram(name string, labels ...string) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.histograms[c.key(name, labels)]
}

var (
	_ Collector = (*NopCollector)(nil)
	_ Collector = (*InMemoryCollector)(nil)
)
