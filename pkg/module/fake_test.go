package module

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/client"
)

// fakeService is an in-process scanning service.
type fakeService struct {
	mu           sync.Mutex
	scanBody     string
	scanStatus   int
	history      map[string]string
	historyFail  bool
	clearStatus  int
	reportStatus int
	stats        string

	// gate, when set, holds scan responses until closed.
	gate chan struct{}

	scans   atomic.Int32
	fetches atomic.Int32
	clears  atomic.Int32
	reports atomic.Int32
	lastReq atomic.Value
}

func newFakeService() *fakeService {
	return &fakeService{
		scanStatus:   http.StatusOK,
		clearStatus:  http.StatusOK,
		reportStatus: http.StatusOK,
		history:      map[string]string{},
		stats:        `{"total":10,"threats":3,"safe":7}`,
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && (r.URL.Path == "/api/scan" || strings.HasPrefix(r.URL.Path, "/api/scan/")):
		f.scans.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastReq.Store(body)
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
		f.clears.Add(1)
		w.WriteHeader(f.clearStatus)
		if f.clearStatus == http.StatusOK {
			f.history[r.URL.Query().Get("type")] = "[]"
			w.Write([]byte(`{"success":true}`))
		}
	case r.Method == http.MethodGet && r.URL.Path == "/api/stats":
		w.Write([]byte(f.stats))
	case r.Method == http.MethodPost && r.URL.Path == "/api/report/phone":
		f.reports.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastReq.Store(body)
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

func (f *fakeService) lastBody() map[string]any {
	v, _ := f.lastReq.Load().(map[string]any)
	return v
}

func newFakeClient(t *testing.T, f *fakeService) *client.Client {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return client.NewWithOptions(
		client.WithBaseURL(server.URL),
		client.WithRetry(0, time.Millisecond),
	)
}

// recordingAuditor captures audit calls.
type recordingAuditor struct {
	mu     sync.Mutex
	events []string
}

func (a *recordingAuditor) add(s string) {
	a.mu.Lock()
	a.events = append(a.events, s)
	a.mu.Unlock()
}

func (a *recordingAuditor) ScanCompleted(module, _, level string, _ time.Duration) {
	a.add("scan_completed:" + module + ":" + level)
}
func (a *recordingAuditor) ScanFailed(module string, _ error) { a.add("scan_failed:" + module) }
func (a *recordingAuditor) ScanRejected(module string, err error) {
	a.add("scan_rejected:" + module + ":" + err.Error())
}
func (a *recordingAuditor) HistoryCleared(module string, err error) {
	if err != nil {
		a.add("history_clear_failed:" + module)
		return
	}
	a.add("history_cleared:" + module)
}
func (a *recordingAuditor) PhoneReported(category string, err error) {
	if err != nil {
		a.add("phone_report_failed:" + category)
		return
	}
	a.add("phone_reported:" + category)
}
func (a *recordingAuditor) Exported(module, format, _ string, err error) {
	if err != nil {
		a.add("export_failed:" + module + ":" + format)
		return
	}
	a.add("exported:" + module + ":" + format)
}

func (a *recordingAuditor) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.events...)
}

func openLedger(t *testing.T) *archive.Store {
	t.Helper()
	s, err := archive.Open(&archive.Config{DatabasePath: t.TempDir() + "/exports.db"})
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
