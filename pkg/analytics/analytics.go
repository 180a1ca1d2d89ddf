// Package analytics reads the service's analytics summary and derives the
// per-module overview shown on the analytics tab.
package analytics

import (
	"context"
	"math"

	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/core"
	"github.com/cybershieldio/sdk/pkg/metrics"
)

// Source reads analytics from the service. *client.Client implements it.
type Source interface {
	FetchAnalytics(ctx context.Context) (client.Analytics, error)
}

// DefaultModules is the zeroed module breakdown used when the service has
// no data.
func DefaultModules() []client.ModuleSummary {
	return []client.ModuleSummary{
		{Name: "Email Security"},
		{Name: "Web Scanner"},
		{Name: "SMS Protection"},
		{Name: "Phone Security"},
		{Name: "File Scanner"},
	}
}

// Fallback returns the analytics shown when the service cannot be read:
// every metric zero and the default module list.
func Fallback() client.Analytics {
	a := client.Analytics{Modules: DefaultModules()}
	a.Normalize()
	return a
}

// Aggregator fetches analytics and never fails.
type Aggregator struct {
	src     Source
	logger  core.Logger
	metrics metrics.Collector
}

// New creates an Aggregator. logger and m may be nil.
func New(src Source, logger core.Logger, m metrics.Collector) *Aggregator {
	return &Aggregator{
		src:     src,
		logger:  core.OrNop(logger),
		metrics: metrics.OrNop(m),
	}
}

// Fetch returns the service's analytics, or Fallback on any error. A
// response without a module list gets the default list.
func (a *Aggregator) Fetch(ctx context.Context) client.Analytics {
	data, err := a.src.FetchAnalytics(ctx)
	if err != nil {
		a.logger.Warn("analytics unavailable, using defaults: %v", err)
		a.metrics.CounterInc(metrics.AnalyticsFallbacksTotal.Name)
		return Fallback()
	}
	if len(data.Modules) == 0 {
		data.Modules = DefaultModules()
	}
	data.Normalize()
	return data
}

// ModuleSuccessRate returns blocked/threats as a percentage rounded to one
// decimal. A module with no threats has a rate of 100.
func ModuleSuccessRate(m client.ModuleSummary) float64 {
	if m.Threats == 0 {
		return 100
	}
	return math.Round(float64(m.Blocked)/float64(m.Threats)*1000) / 10
}
