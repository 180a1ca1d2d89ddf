package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/metrics"
)

func newAggregator(t *testing.T, status int, body string, m metrics.Collector) *Aggregator {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analytics" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	c := client.NewWithOptions(client.WithBaseURL(server.URL), client.WithRetry(0, time.Millisecond))
	return New(c, nil, m)
}

func assertFallback(t *testing.T, a client.Analytics) {
	t.Helper()
	if a.TotalThreats != 0 || a.TotalBlocked != 0 || a.SuccessRate != 0 {
		t.Errorf("totals = %d/%d/%v, want zeros", a.TotalThreats, a.TotalBlocked, a.SuccessRate)
	}
	want := []string{"Email Security", "Web Scanner", "SMS Protection", "Phone Security", "File Scanner"}
	if len(a.Modules) != len(want) {
		t.Fatalf("modules = %d, want 5", len(a.Modules))
	}
	for i, m := range a.Modules {
		if m.Name != want[i] {
			t.Errorf("Modules[%d] = %q, want %q", i, m.Name, want[i])
		}
		if m.Scanned != 0 || m.Threats != 0 || m.Blocked != 0 {
			t.Errorf("Modules[%d] = %+v, want zero counts", i, m)
		}
	}
}

func TestAggregator_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"down"}`},
		{"not found", http.StatusNotFound, ``},
		{"malformed", http.StatusOK, `{"totalThreats":`},
		{"null", http.StatusOK, `null`},
		{"wrong type", http.StatusOK, `{"totalThreats":"many"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewInMemoryCollector()
			a := newAggregator(t, tt.status, tt.body, m).Fetch(context.Background())
			assertFallback(t, a)
			if got := m.GetCounter(metrics.AnalyticsFallbacksTotal.Name); got != 1 {
				t.Errorf("fallback counter = %v, want 1", got)
			}
		})
	}
}

func TestAggregator_Unreachable(t *testing.T) {
	c := client.NewWithOptions(client.WithBaseURL("http://127.0.0.1:1"), client.WithRetry(0, time.Millisecond))
	assertFallback(t, New(c, nil, nil).Fetch(context.Background()))
}

func TestAggregator_MissingModules(t *testing.T) {
	a := newAggregator(t, http.StatusOK, `{"totalThreats":4,"totalBlocked":3,"successRate":75}`, nil).Fetch(context.Background())
	if a.TotalThreats != 4 || a.TotalBlocked != 3 || a.SuccessRate != 75 {
		t.Errorf("totals = %+v", a)
	}
	if len(a.Modules) != 5 {
		t.Errorf("modules = %d, want default 5", len(a.Modules))
	}
}

func TestAggregator_Success(t *testing.T) {
	body := `{
		"totalThreats": 12, "totalBlocked": 10, "successRate": 83.3,
		"modules": [{"name":"Email Security","scanned":40,"threats":6,"blocked":5}],
		"severity": [{"name":"Dangerous","value":4,"fill":"#ef4444"}],
		"trend": [{"date":"Mon","scans":3,"threats":1}]
	}`
	a := newAggregator(t, http.StatusOK, body, nil).Fetch(context.Background())
	if len(a.Modules) != 1 || a.Modules[0].Blocked != 5 {
		t.Errorf("Modules = %+v", a.Modules)
	}
	if len(a.Severity) != 1 || a.Severity[0].Fill != "#ef4444" {
		t.Errorf("Severity = %+v", a.Severity)
	}
	if a.RadarData == nil || a.ModuleTrends == nil {
		t.Error("missing collections should be empty, not nil")
	}
}

func TestModuleSuccessRate(t *testing.T) {
	tests := []struct {
		name string
		m    client.ModuleSummary
		want float64
	}{
		{"no threats no blocks", client.ModuleSummary{}, 100},
		{"no threats some blocks", client.ModuleSummary{Blocked: 3}, 100},
		{"all blocked", client.ModuleSummary{Threats: 4, Blocked: 4}, 100},
		{"two thirds", client.ModuleSummary{Threats: 3, Blocked: 2}, 66.7},
		{"none blocked", client.ModuleSummary{Threats: 5}, 0},
		{"one in eight", client.ModuleSummary{Threats: 8, Blocked: 1}, 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModuleSuccessRate(tt.m); got != tt.want {
				t.Errorf("ModuleSuccessRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewOverview(t *testing.T) {
	o := NewOverview(Fallback())
	if len(o.Modules) != 5 {
		t.Fatalf("modules = %d", len(o.Modules))
	}
	for _, row := range o.Modules {
		if row.SuccessRate != 100 {
			t.Errorf("%s success = %v, want 100", row.Name, row.SuccessRate)
		}
	}
	if o.Modules[0].Appearance.Icon != "mail" || o.Modules[0].Appearance.Color != "text-green-600" {
		t.Errorf("email appearance = %+v", o.Modules[0].Appearance)
	}
}

func TestAppearanceFor_Unknown(t *testing.T) {
	got := AppearanceFor("Fax Guard")
	if got.Icon != "shield" || got.BorderColor != "border-gray-200" {
		t.Errorf("AppearanceFor(unknown) = %+v", got)
	}
}
