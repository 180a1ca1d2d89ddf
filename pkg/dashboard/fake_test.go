package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cybershieldio/sdk/pkg/analytics"
	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/module"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// fakeService is an in-process scanning service.
type fakeService struct {
	mu           sync.Mutex
	scanBody     string
	scanStatus   int
	history      map[string]string
	historyFail  bool
	analytics    string
	reportStatus int

	// gate, when set, holds scan responses until closed.
	gate chan struct{}
	// historyGate does the same for history fetches.
	historyGate chan struct{}

	scans      atomic.Int32
	fetches    atomic.Int32
	analyzed   atomic.Int32
	lastReport atomic.Value
}

func newFakeService() *fakeService {
	return &fakeService{
		scanStatus:   http.StatusOK,
		reportStatus: http.StatusOK,
		history:      map[string]string{},
		analytics:    `{"totalThreats":4,"totalBlocked":3,"successRate":75,"modules":[{"name":"Email Security","scanned":10,"threats":4,"blocked":3}]}`,
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && (r.URL.Path == "/api/scan" || strings.HasPrefix(r.URL.Path, "/api/scan/")):
		f.scans.Add(1)
		if f.gate != nil {
			gate := f.gate
			f.mu.Unlock()
			<-gate
			f.mu.Lock()
		}
		w.WriteHeader(f.scanStatus)
		w.Write([]byte(f.scanBody))
	case r.Method == http.MethodGet && r.URL.Path == "/api/history":
		f.fetches.Add(1)
		if f.historyGate != nil {
			gate := f.historyGate
			f.mu.Unlock()
			<-gate
			f.mu.Lock()
		}
		if f.historyFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := f.history[r.URL.Query().Get("type")]
		if !ok {
			body = "[]"
		}
		w.Write([]byte(body))
	case r.Method == http.MethodDelete && r.URL.Path == "/api/history":
		f.history[r.URL.Query().Get("type")] = "[]"
		w.Write([]byte(`{"success":true}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/stats":
		w.Write([]byte(`{"total":2,"threats":1,"safe":1}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/analytics":
		f.analyzed.Add(1)
		if f.analytics == "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(f.analytics))
	case r.Method == http.MethodPost && r.URL.Path == "/api/report/phone":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastReport.Store(body)
		w.WriteHeader(f.reportStatus)
		w.Write([]byte(`{"success":true}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) set(fn func(f *fakeService)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fixture struct {
	service *fakeService
	shell   *Shell
	ledger  *archive.Store
	metrics *metrics.InMemoryCollector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFakeService()
	upstream := httptest.NewServer(f)
	t.Cleanup(upstream.Close)

	c := client.NewWithOptions(
		client.WithBaseURL(upstream.URL),
		client.WithRetry(0, time.Millisecond),
	)
	ledger, err := archive.Open(&archive.Config{DatabasePath: t.TempDir() + "/exports.db"})
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	m := metrics.NewInMemoryCollector()
	n := scan.NewNormalizer(scan.DefaultDisplayDefaults())
	set := module.NewSet(c, c, n, &module.Options{Metrics: m, Ledger: ledger})
	shell := NewShell(set, analytics.New(c, nil, m), &ShellOptions{Ledger: ledger})
	return &fixture{service: f, shell: shell, ledger: ledger, metrics: m}
}
