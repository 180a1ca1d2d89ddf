package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cybershieldio/sdk/pkg/analytics"
	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/audit"
	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/core"
	"github.com/cybershieldio/sdk/pkg/dashboard"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/module"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// app holds the wired components shared by every command.
type app struct {
	cfg     *Config
	logger  core.Logger
	metrics metrics.Collector
	client  *client.Client
	auditor *audit.Logger
	ledger  *archive.Store
	set     *module.Set
	shell   *dashboard.Shell
}

// newApp wires the client, controllers and local stores. The audit log and
// the export ledger are optional: failing to open them is logged and the
// app runs without them.
func newApp(cfg *Config, m metrics.Collector) (*app, error) {
	logger := core.NewDefaultLogger(core.AppName, core.ParseLogLevel(cfg.LogLevel))
	m = metrics.OrNop(m)

	c := client.New(&cfg.CyberShield, client.WithLogger(logger), client.WithMetrics(m))
	if c.BaseURL() == "" {
		return nil, errors.New("service URL is required")
	}

	a := &app{cfg: cfg, logger: logger, metrics: m, client: c}
	opts := &module.Options{Logger: logger, Metrics: m}
	shellOpts := &dashboard.ShellOptions{Logger: logger}

	if cfg.Audit.Enabled {
		if cfg.Audit.Logger.Source == "" {
			cfg.Audit.Logger.Source, _ = os.Hostname()
		}
		auditor, err := audit.NewLogger(&cfg.Audit.Logger)
		if err != nil {
			logger.Warn("audit log disabled: %v", err)
		} else {
			auditor.Start()
			a.auditor = auditor
			opts.Auditor = auditor
			shellOpts.Auditor = auditor
		}
	}

	ledger, err := archive.Open(&cfg.Archive)
	if err != nil {
		logger.Warn("export ledger disabled: %v", err)
	} else {
		a.ledger = ledger
		opts.Ledger = ledger
		shellOpts.Ledger = ledger
	}

	n := scan.NewNormalizer(cfg.Display)
	a.set = module.NewSet(c, c, n, opts)
	a.shell = dashboard.NewShell(a.set, analytics.New(c, logger, m), shellOpts)
	return a, nil
}

// panel returns the controller for name.
func (a *app) panel(name string) (module.Panel, error) {
	m, err := scan.ParseModule(name)
	if err != nil {
		return nil, fmt.Errorf("unknown module %q (want email, sms, phone, web or file)", name)
	}
	return a.set.Panel(m), nil
}

// Close flushes the audit log and closes the ledger.
func (a *app) Close() error {
	var errs []error
	if a.auditor != nil {
		errs = append(errs, a.auditor.Stop())
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	return errors.Join(errs...)
}
