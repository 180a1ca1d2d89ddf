// Package module implements the per-module scan controllers. Each controller
// owns the view state of one scanning domain: the latest result, the history
// list and the aggregate stats. Controllers never share state.
package module

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/core"
	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/export"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/scan"
	"github.com/cybershieldio/sdk/pkg/threat"
)

// Service is the part of the scanning service the controllers talk to.
// *client.Client implements it.
type Service interface {
	SubmitScan(ctx context.Context, module scan.Module, payload any) (scan.Raw, error)
	FetchHistory(ctx context.Context, module scan.Module) ([]scan.Raw, error)
	ClearHistory(ctx context.Context, module scan.Module) error
	FetchStats(ctx context.Context) (client.Stats, error)
}

// Auditor receives user-visible actions. *audit.Logger implements it.
type Auditor interface {
	ScanCompleted(module, resultID, level string, duration time.Duration)
	ScanFailed(module string, err error)
	ScanRejected(module string, err error)
	HistoryCleared(module string, err error)
	PhoneReported(category string, err error)
	Exported(module, format, path string, err error)
}

// Ledger records exported files. *archive.Store implements it.
type Ledger interface {
	RecordFile(ctx context.Context, module string, format archive.Format, path, resultID, level string) (*archive.Record, error)
}

// Binding describes how one module's results are decoded and rendered.
type Binding[R scan.Result] struct {
	Module scan.Module

	// Normalize turns a raw service object into a typed record.
	Normalize func(raw scan.Raw, src scan.Source) R

	// Report renders the plain-text report used by CopyReport.
	Report func(r R) string

	// Title and Fields feed the PDF export.
	Title  string
	Fields func(r R) []export.Field

	// Notes lists findings for the PDF export. Optional.
	Notes func(r R) []string
}

// Options configures a controller.
type Options struct {
	Logger  core.Logger
	Metrics metrics.Collector
	Auditor Auditor
	Ledger  Ledger
}

// Controller holds the view state of one scan module.
type Controller[R scan.Result] struct {
	svc     Service
	binding Binding[R]
	logger  core.Logger
	metrics metrics.Collector
	auditor Auditor
	ledger  Ledger

	scanning atomic.Bool

	mu      sync.RWMutex
	current *R
	history []R
	stats   client.Stats
}

// NewController creates a controller for binding backed by svc.
func NewController[R scan.Result](svc Service, binding Binding[R], opts *Options) *Controller[R] {
	if opts == nil {
		opts = &Options{}
	}
	return &Controller[R]{
		svc:     svc,
		binding: binding,
		logger:  core.OrNop(opts.Logger),
		metrics: metrics.OrNop(opts.Metrics),
		auditor: opts.Auditor,
		ledger:  opts.Ledger,
		history: make([]R, 0),
	}
}

// Module returns the module this controller serves.
func (c *Controller[R]) Module() scan.Module {
	return c.binding.Module
}

// Start performs the initial history and stats fetch.
func (c *Controller[R]) Start(ctx context.Context) error {
	return errors.Join(c.RefreshHistory(ctx), c.RefreshStats(ctx))
}

// Scan submits req and, on success, stores the normalized result and
// refreshes history and stats. Blank input and a scan already in flight are
// rejected without a request. On any failure the previous state is kept.
func (c *Controller[R]) Scan(ctx context.Context, req scan.Request) (R, error) {
	const op = "module.Scan"
	var zero R
	mod := c.binding.Module.String()

	if req == nil || req.Module() != c.binding.Module {
		c.metrics.CounterInc(metrics.ScansTotal.Name, "module", mod, "outcome", metrics.OutcomeRejected)
		return zero, sdkerrors.E(sdkerrors.KindInvalidInput, op, "payload does not belong to module "+mod)
	}
	if req.Empty() {
		c.metrics.CounterInc(metrics.ScansTotal.Name, "module", mod, "outcome", metrics.OutcomeRejected)
		return zero, c.rejected(sdkerrors.E(op, sdkerrors.ErrEmptyInput))
	}
	if !c.scanning.CompareAndSwap(false, true) {
		c.metrics.CounterInc(metrics.ScansTotal.Name, "module", mod, "outcome", metrics.OutcomeBusy)
		return zero, c.rejected(sdkerrors.E(op, sdkerrors.ErrScanInProgress))
	}
	defer c.scanning.Store(false)

	c.metrics.GaugeInc(metrics.ScansInFlight.Name, "module", mod)
	start := time.Now()
	raw, err := c.svc.SubmitScan(ctx, c.binding.Module, req)
	c.metrics.GaugeDec(metrics.ScansInFlight.Name, "module", mod)
	if err != nil {
		c.logger.Error("%s scan failed: %v", mod, err)
		c.metrics.CounterInc(metrics.ScansTotal.Name, "module", mod, "outcome", metrics.OutcomeFailed)
		if c.auditor != nil {
			c.auditor.ScanFailed(mod, err)
		}
		return zero, sdkerrors.Wrap(err, op)
	}

	result := c.binding.Normalize(raw, scan.SourceScan)
	c.setCurrent(result)
	c.afterScan(ctx, result, time.Since(start))
	return result, nil
}

func (c *Controller[R]) rejected(err error) error {
	if c.auditor != nil {
		c.auditor.ScanRejected(c.binding.Module.String(), err)
	}
	return err
}

// afterScan records a completed scan and performs the read-after-write
// refresh. Refresh failures are logged and leave the old lists in place.
func (c *Controller[R]) afterScan(ctx context.Context, result R, took time.Duration) {
	mod := c.binding.Module.String()
	c.metrics.CounterInc(metrics.ScansTotal.Name, "module", mod, "outcome", metrics.OutcomeSuccess)
	c.metrics.CounterInc(metrics.ScanResultsTotal.Name, "module", mod, "threat_level", result.Level().String())
	if c.auditor != nil {
		c.auditor.ScanCompleted(mod, result.ResultID(), result.Level().String(), took)
	}
	c.logger.Info("%s scan completed: %s (%s)", mod, result.Level(), took.Round(time.Millisecond))

	_ = c.RefreshHistory(ctx)
	_ = c.RefreshStats(ctx)
}

func (c *Controller[R]) setCurrent(r R) {
	c.mu.Lock()
	c.current = &r
	c.mu.Unlock()
}

// RefreshHistory replaces the local history with the service's list.
func (c *Controller[R]) RefreshHistory(ctx context.Context) error {
	mod := c.binding.Module
	raws, err := c.svc.FetchHistory(ctx, mod)
	if err != nil {
		c.logger.Warn("%s history fetch failed: %v", mod, err)
		return sdkerrors.Wrap(err, "module.RefreshHistory")
	}

	history := make([]R, 0, len(raws))
	for _, raw := range raws {
		history = append(history, c.binding.Normalize(raw, scan.SourceHistory))
	}

	c.mu.Lock()
	c.history = history
	c.mu.Unlock()
	c.metrics.GaugeSet(metrics.HistoryEntries.Name, float64(len(history)), "module", mod.String())
	return nil
}

// RefreshStats replaces the aggregate counters with the service's values.
func (c *Controller[R]) RefreshStats(ctx context.Context) error {
	stats, err := c.svc.FetchStats(ctx)
	if err != nil {
		c.logger.Warn("%s stats fetch failed: %v", c.binding.Module, err)
		return sdkerrors.Wrap(err, "module.RefreshStats")
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// ClearHistory deletes the module's history on the service. On success the
// local list is emptied; on failure it is left unchanged.
func (c *Controller[R]) ClearHistory(ctx context.Context) error {
	mod := c.binding.Module
	err := c.svc.ClearHistory(ctx, mod)
	if c.auditor != nil {
		c.auditor.HistoryCleared(mod.String(), err)
	}
	if err != nil {
		c.logger.Error("%s history clear failed: %v", mod, err)
		c.metrics.CounterInc(metrics.HistoryClearsTotal.Name, "module", mod.String(), "outcome", metrics.OutcomeFailed)
		return sdkerrors.Wrap(err, "module.ClearHistory")
	}

	c.mu.Lock()
	c.history = make([]R, 0)
	c.mu.Unlock()
	c.metrics.CounterInc(metrics.HistoryClearsTotal.Name, "module", mod.String(), "outcome", metrics.OutcomeSuccess)
	c.metrics.GaugeSet(metrics.HistoryEntries.Name, 0, "module", mod.String())
	return nil
}

// Current returns the latest scan result, if any.
func (c *Controller[R]) Current() (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		var zero R
		return zero, false
	}
	return *c.current, true
}

// History returns a copy of the history list. It is never nil.
func (c *Controller[R]) History() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]R, len(c.history))
	copy(out, c.history)
	return out
}

// Stats returns the last fetched aggregate counters.
func (c *Controller[R]) Stats() client.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Scanning reports whether a scan is outstanding.
func (c *Controller[R]) Scanning() bool {
	return c.scanning.Load()
}

// CopyReport renders the plain-text report of the current result.
func (c *Controller[R]) CopyReport() (string, error) {
	r, ok := c.Current()
	if !ok {
		return "", sdkerrors.E("module.CopyReport", sdkerrors.ErrNoResult)
	}
	return c.binding.Report(r), nil
}

// Export writes the current result as pretty JSON into dir and returns the
// file path.
func (c *Controller[R]) Export(ctx context.Context, dir string) (string, error) {
	r, ok := c.Current()
	if !ok {
		return "", sdkerrors.E("module.Export", sdkerrors.ErrNoResult)
	}
	path := filepath.Join(dir, c.binding.Module.ReportFileName())
	_, err := export.WriteJSON(path, r)
	return path, c.finishExport(ctx, archive.FormatJSON, path, r, err)
}

// ExportPDF writes the current result as a PDF report into dir and returns
// the file path.
func (c *Controller[R]) ExportPDF(ctx context.Context, dir string) (string, error) {
	r, ok := c.Current()
	if !ok {
		return "", sdkerrors.E("module.ExportPDF", sdkerrors.ErrNoResult)
	}
	path := filepath.Join(dir, c.binding.Module.PDFFileName())
	err := export.WritePDF(path, c.pdfReport(r))
	return path, c.finishExport(ctx, archive.FormatPDF, path, r, err)
}

func (c *Controller[R]) pdfReport(r R) export.Report {
	rep := export.Report{
		Title:       c.binding.Title,
		Module:      c.binding.Module.DisplayName(),
		ResultID:    r.ResultID(),
		ThreatLevel: threat.StyleFor(r.Level()).Label,
		Timestamp:   timestampOf(r),
	}
	if c.binding.Fields != nil {
		rep.Fields = c.binding.Fields(r)
	}
	if c.binding.Notes != nil {
		rep.Notes = c.binding.Notes(r)
	}
	return rep
}

func (c *Controller[R]) finishExport(ctx context.Context, format archive.Format, path string, r R, err error) error {
	mod := c.binding.Module.String()
	if c.auditor != nil {
		c.auditor.Exported(mod, string(format), path, err)
	}
	if err != nil {
		c.logger.Error("%s %s export failed: %v", mod, format, err)
		c.metrics.CounterInc(metrics.ExportsTotal.Name, "format", string(format), "outcome", metrics.OutcomeFailed)
		return sdkerrors.E(sdkerrors.KindInternal, "module.Export", err)
	}
	c.metrics.CounterInc(metrics.ExportsTotal.Name, "format", string(format), "outcome", metrics.OutcomeSuccess)

	if c.ledger != nil {
		if _, lerr := c.ledger.RecordFile(ctx, mod, format, path, r.ResultID(), r.Level().String()); lerr != nil {
			c.logger.Warn("%s export not recorded: %v", mod, lerr)
		}
	}
	return nil
}

// View returns a snapshot of the controller state for rendering.
func (c *Controller[R]) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Module:   c.binding.Module,
		Name:     c.binding.Module.DisplayName(),
		History:  make([]any, 0, len(c.history)),
		Counts:   threat.Count(c.history),
		Stats:    c.stats,
		Scanning: c.scanning.Load(),
	}
	if c.current != nil {
		v.Current = *c.current
		style := threat.StyleFor((*c.current).Level())
		v.CurrentStyle = &style
	}
	for _, h := range c.history {
		v.History = append(v.History, h)
	}
	return v
}

// HistoryItems returns the history list as untyped values for bundling.
func (c *Controller[R]) HistoryItems() []any {
	return c.View().History
}

// Submit is Scan for callers that do not know R.
func (c *Controller[R]) Submit(ctx context.Context, req scan.Request) (scan.Result, error) {
	r, err := c.Scan(ctx, req)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// timestampOf returns the record's scan time.
func timestampOf(r scan.Result) string {
	switch t := r.(type) {
	case scan.EmailResult:
		return t.Timestamp
	case scan.SMSResult:
		return t.Timestamp
	case scan.PhoneResult:
		return t.Timestamp
	case scan.WebResult:
		return t.Timestamp
	case scan.FileResult:
		return t.Timestamp
	}
	return ""
}
