// Package dashboard ties the module controllers together: the Shell tracks
// the active tab and refreshes what it shows, and the Server exposes the
// shell over HTTP.
package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/cybershieldio/sdk/pkg/analytics"
	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/core"
	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/export"
	"github.com/cybershieldio/sdk/pkg/module"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// Tab describes one dashboard tab.
type Tab struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	Description string      `json:"description"`
	Module      scan.Module `json:"module,omitempty"`
}

// Tab ids that are not scan modules.
const (
	TabOverview  = "overview"
	TabEducation = "education"
	TabAnalytics = "analytics"
)

// Tabs returns the dashboard tabs in display order.
func Tabs() []Tab {
	return []Tab{
		{ID: TabOverview, Name: "Overview", Icon: "shield", Color: "text-blue-600", Description: "Security dashboard"},
		{ID: "email", Name: "Email Security", Icon: "mail", Color: "text-green-600", Description: "Spam & phishing detection", Module: scan.ModuleEmail},
		{ID: "sms", Name: "SMS Protection", Icon: "message-square", Color: "text-yellow-600", Description: "SMS spam filtering", Module: scan.ModuleSMS},
		{ID: "phone", Name: "Phone Security", Icon: "phone", Color: "text-red-600", Description: "Scam caller detection", Module: scan.ModulePhone},
		{ID: "web", Name: "Web Scanner", Icon: "globe", Color: "text-purple-600", Description: "URL & breach lookup", Module: scan.ModuleWeb},
		{ID: "files", Name: "File Scanner", Icon: "file-text", Color: "text-orange-600", Description: "Malware detection", Module: scan.ModuleFile},
		{ID: TabEducation, Name: "Education", Icon: "book-open", Color: "text-indigo-600", Description: "Security awareness"},
		{ID: TabAnalytics, Name: "Analytics", Icon: "bar-chart-3", Color: "text-teal-600", Description: "Security insights"},
	}
}

// LookupTab finds a tab by id. Module names are accepted for module tabs,
// so "file" finds the "files" tab.
func LookupTab(id string) (Tab, bool) {
	for _, t := range Tabs() {
		if t.ID == id {
			return t, true
		}
	}
	if m, err := scan.ParseModule(id); err == nil {
		for _, t := range Tabs() {
			if t.Module == m {
				return t, true
			}
		}
	}
	return Tab{}, false
}

// Selection is what the shell shows after a tab switch.
type Selection struct {
	Tab       Tab                 `json:"tab"`
	Available bool                `json:"available"`
	Message   string              `json:"message,omitempty"`
	Module    *module.View        `json:"module,omitempty"`
	Modules   []module.View       `json:"modules,omitempty"`
	Analytics *analytics.Overview `json:"analytics,omitempty"`
}

// Shell owns one controller per module and the analytics aggregator.
type Shell struct {
	set       *module.Set
	analytics *analytics.Aggregator
	logger    core.Logger
	auditor   module.Auditor
	ledger    module.Ledger

	mu       sync.Mutex // guards selected and seq
	selected Selection
	seq      uint64
}

// ShellOptions configures a Shell.
type ShellOptions struct {
	Logger  core.Logger
	Auditor module.Auditor
	Ledger  module.Ledger
}

// NewShell creates a shell over the controllers in set. The overview tab is
// active until Select is called.
func NewShell(set *module.Set, agg *analytics.Aggregator, opts *ShellOptions) *Shell {
	if opts == nil {
		opts = &ShellOptions{}
	}
	overview, _ := LookupTab(TabOverview)
	return &Shell{
		set:       set,
		analytics: agg,
		logger:    core.OrNop(opts.Logger),
		auditor:   opts.Auditor,
		ledger:    opts.Ledger,
		selected:  Selection{Tab: overview, Available: true},
	}
}

// Start performs every controller's initial fetch. Failures are logged and
// joined; the controllers stay usable.
func (s *Shell) Start(ctx context.Context) error {
	var errs []error
	for _, p := range s.set.Panels() {
		if err := p.Start(ctx); err != nil {
			s.logger.Warn("%s initial fetch failed: %v", p.Module(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Select switches the active tab and refreshes its content: a module tab
// refetches that module's history, the analytics tab refetches analytics.
// An unknown id selects a placeholder and is not an error.
//
// Fetches run without holding the shell lock. When selections overlap, the
// one issued last is kept as the active tab.
func (s *Shell) Select(ctx context.Context, id string) Selection {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	sel := s.resolve(ctx, id)

	s.mu.Lock()
	if seq == s.seq {
		s.selected = sel
	}
	s.mu.Unlock()
	return sel
}

func (s *Shell) resolve(ctx context.Context, id string) Selection {
	tab, ok := LookupTab(id)
	if !ok {
		return Selection{
			Tab:     Tab{ID: id, Name: id},
			Message: "Module not available",
		}
	}

	sel := Selection{Tab: tab, Available: true}
	switch {
	case tab.Module != "":
		p := s.set.Panel(tab.Module)
		// a failed refresh keeps the previous list on screen
		_ = p.RefreshHistory(ctx)
		v := p.View()
		sel.Module = &v
	case tab.ID == TabAnalytics:
		o := s.Analytics(ctx)
		sel.Analytics = &o
	case tab.ID == TabOverview:
		sel.Modules = s.Views()
	}
	return sel
}

// Active returns the last selection.
func (s *Shell) Active() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Panel returns the controller for m, or nil.
func (s *Shell) Panel(m scan.Module) module.Panel {
	return s.set.Panel(m)
}

// Phone returns the phone controller.
func (s *Shell) Phone() *module.PhoneController {
	return s.set.Phone
}

// File returns the file controller.
func (s *Shell) File() *module.FileController {
	return s.set.File
}

// Views returns a snapshot of every controller in module order.
func (s *Shell) Views() []module.View {
	panels := s.set.Panels()
	views := make([]module.View, 0, len(panels))
	for _, p := range panels {
		views = append(views, p.View())
	}
	return views
}

// Analytics fetches analytics and builds the overview. It never fails.
func (s *Shell) Analytics(ctx context.Context) analytics.Overview {
	return analytics.NewOverview(s.analytics.Fetch(ctx))
}

// ExportHistory writes every module's current history list into one
// compressed bundle in dir.
func (s *Shell) ExportHistory(ctx context.Context, dir string, algorithm export.Algorithm) (*export.BundleStats, error) {
	bundle := &export.HistoryBundle{Modules: make(map[string][]any)}
	for _, p := range s.set.Panels() {
		bundle.Modules[p.Module().String()] = p.HistoryItems()
	}

	path := filepath.Join(dir, export.BundleFileName(algorithm))
	stats, err := export.WriteBundle(path, algorithm, bundle)
	if s.auditor != nil {
		s.auditor.Exported("all", string(archive.FormatBundle), path, err)
	}
	if err != nil {
		s.logger.Error("history bundle export failed: %v", err)
		return nil, sdkerrors.E(sdkerrors.KindInternal, "dashboard.ExportHistory", err)
	}

	if s.ledger != nil {
		if _, err := s.ledger.RecordFile(ctx, "all", archive.FormatBundle, path, "", ""); err != nil {
			s.logger.Warn("history bundle not recorded: %v", err)
		}
	}
	s.logger.Info("exported %d history entries to %s (%.0f%% of original)", stats.Entries, path, stats.Ratio*100)
	return stats, nil
}
