// Package health serves the dashboard's liveness and readiness endpoints.
// Readiness aggregates the registered checks: the scanning service, the
// export ledger, the export directory and system memory.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sys/unix"
)

// Checker is one health check.
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) CheckResult

func (f CheckFunc) Check(ctx context.Context) CheckResult { return f(ctx) }

// Status represents the health status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult holds the result of a health check.
type CheckResult struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Duration  time.Duration  `json:"duration_ms"`
	Timestamp time.Time      `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Response is the aggregated readiness response.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Uptime    time.Duration          `json:"uptime_seconds,omitempty"`
}

// Handler runs checks and serves the probe endpoints.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]Checker
	ready  bool

	version     string
	startTime   time.Time
	timeout     time.Duration
	hideDetails bool
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithVersion sets the version reported by readiness.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) { h.version = version }
}

// WithTimeout bounds the whole check run.
func WithTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) { h.timeout = timeout }
}

// WithHideDetails reports only the overall status.
func WithHideDetails() HandlerOption {
	return func(h *Handler) { h.hideDetails = true }
}

// NewHandler creates a handler with no checks. It starts ready.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		checks:    make(map[string]Checker),
		startTime: time.Now(),
		timeout:   5 * time.Second,
		ready:     true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds or replaces a named check.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = checker
}

// RegisterFunc adds a check function.
func (h *Handler) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	h.Register(name, CheckFunc(fn))
}

// SetReady sets the readiness flag; false fails readiness without running
// checks. The dashboard clears it while shutting down.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns the readiness flag.
func (h *Handler) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Check runs every registered check concurrently. Any unhealthy check makes
// the response unhealthy; otherwise any degraded check makes it degraded.
func (h *Handler) Check(ctx context.Context) Response {
	h.mu.RLock()
	checks := make(map[string]Checker, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]CheckResult, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	overall := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall != StatusUnhealthy {
				overall = StatusDegraded
			}
		}
	}

	resp := Response{
		Status:    overall,
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.startTime),
	}
	if !h.hideDetails {
		resp.Checks = results
	}
	return resp
}

// Routes mounts /healthz and /readyz on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.liveness)
	r.Get("/readyz", h.readiness)
}

func (h *Handler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if !h.IsReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    StatusUnhealthy,
			"message":   "shutting down",
			"timestamp": time.Now(),
		})
		return
	}

	resp := h.Check(r.Context())
	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// UpstreamCheck pings the scanning service. An unreachable service only
// degrades the dashboard: it keeps serving the last fetched state.
type UpstreamCheck struct {
	URL  string
	Ping func(ctx context.Context) error
}

func (c *UpstreamCheck) Check(ctx context.Context) CheckResult {
	result := CheckResult{Metadata: map[string]any{"url": c.URL}}
	if c.Ping == nil {
		result.Status = StatusUnknown
		result.Message = "no ping function configured"
		return result
	}
	if err := c.Ping(ctx); err != nil {
		result.Status = StatusDegraded
		result.Error = err.Error()
		return result
	}
	result.Status = StatusHealthy
	result.Message = "scanning service reachable"
	return result
}

// DatabaseCheck pings the export ledger.
type DatabaseCheck struct {
	PingFunc func(ctx context.Context) error
}

func (c *DatabaseCheck) Check(ctx context.Context) CheckResult {
	var result CheckResult
	if c.PingFunc == nil {
		result.Status = StatusUnknown
		result.Message = "no ping function configured"
		return result
	}
	if err := c.PingFunc(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		return result
	}
	result.Status = StatusHealthy
	result.Message = "connected"
	return result
}

// DiskCheck checks free space where reports are exported.
type DiskCheck struct {
	Path           string
	MinFreeBytes   uint64
	MinFreePercent float64 // takes precedence over MinFreeBytes
}

func (c *DiskCheck) Check(ctx context.Context) CheckResult {
	result := CheckResult{Metadata: make(map[string]any)}

	path := c.Path
	if path == "" {
		path = "."
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("statfs %s: %v", path, err)
		return result
	}

	total := stat.Blocks * uint64(stat.Bsize) //nolint:gosec // Bsize is positive
	free := stat.Bavail * uint64(stat.Bsize)  //nolint:gosec // Bsize is positive
	freePercent := 0.0
	if total > 0 {
		freePercent = float64(free) / float64(total) * 100
	}
	result.Metadata["path"] = path
	result.Metadata["free_bytes"] = free
	result.Metadata["free_percent"] = fmt.Sprintf("%.2f%%", freePercent)

	switch {
	case c.MinFreePercent > 0 && freePercent < c.MinFreePercent:
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("free space %.2f%% below %.2f%%", freePercent, c.MinFreePercent)
	case c.MinFreePercent <= 0 && c.MinFreeBytes > 0 && free < c.MinFreeBytes:
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("free space %d bytes below %d bytes", free, c.MinFreeBytes)
	default:
		result.Status = StatusHealthy
		result.Message = fmt.Sprintf("%.2f%% free", freePercent)
	}
	return result
}

var (
	_ Checker = (*UpstreamCheck)(nil)
	_ Checker = (*DatabaseCheck)(nil)
	_ Checker = (*DiskCheck)(nil)
	_ Checker = (*SystemMemoryCheck)(nil)
	_ Checker = CheckFunc(nil)
)
