package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cybershieldio/sdk/pkg/archive"
	"github.com/cybershieldio/sdk/pkg/export"
	"github.com/cybershieldio/sdk/pkg/module"
	"github.com/cybershieldio/sdk/pkg/phone"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// output writes command results as text or pretty JSON.
type output struct {
	w    io.Writer
	json bool
}

func (o output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}

func (o output) emitJSON(v any) error {
	data, err := export.MarshalPretty(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.w, string(data))
	return err
}

// scanInput is what the user typed for a one-shot scan.
type scanInput struct {
	Subject      string
	EmailSubject string
	Sender       string
}

// buildRequest turns CLI input into the module's scan payload. File scans
// are built from the local path by the file controller instead.
func buildRequest(m scan.Module, in scanInput) (scan.Request, error) {
	switch m {
	case scan.ModuleEmail:
		return scan.EmailRequest{Content: in.Subject, Subject: in.EmailSubject, Sender: in.Sender}, nil
	case scan.ModuleSMS:
		return scan.SMSRequest{Content: in.Subject, Sender: in.Sender}, nil
	case scan.ModulePhone:
		return scan.PhoneRequest{Number: in.Subject}, nil
	case scan.ModuleWeb:
		return scan.WebRequest{URL: in.Subject}, nil
	case scan.ModuleFile:
		return module.FileRequestFor(in.Subject), nil
	}
	return nil, fmt.Errorf("unknown module %q", m)
}

func (a *app) runScan(ctx context.Context, out output, name string, in scanInput, exportFormat string) error {
	p, err := a.panel(name)
	if err != nil {
		return err
	}

	var result scan.Result
	if p.Module() == scan.ModuleFile {
		result, err = a.set.File.ScanFile(ctx, in.Subject)
	} else {
		var req scan.Request
		if req, err = buildRequest(p.Module(), in); err != nil {
			return err
		}
		result, err = p.Submit(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("%s scan failed: %w", p.Module(), err)
	}

	if out.json {
		if err := out.emitJSON(result); err != nil {
			return err
		}
	} else {
		report, err := p.CopyReport()
		if err != nil {
			return err
		}
		out.printf("%s\n", report)
	}

	switch exportFormat {
	case "":
		return nil
	case "json":
		path, err := p.Export(ctx, a.cfg.Export.Dir)
		if err != nil {
			return err
		}
		out.printf("\nReport saved to %s\n", path)
	case "pdf":
		path, err := p.ExportPDF(ctx, a.cfg.Export.Dir)
		if err != nil {
			return err
		}
		out.printf("\nReport saved to %s\n", path)
	default:
		return fmt.Errorf("unknown export format %q (want json or pdf)", exportFormat)
	}
	return nil
}

func (a *app) printHistory(ctx context.Context, out output, name string) error {
	p, err := a.panel(name)
	if err != nil {
		return err
	}
	if err := p.RefreshHistory(ctx); err != nil {
		return fmt.Errorf("fetch %s history: %w", p.Module(), err)
	}
	view := p.View()
	if out.json {
		return out.emitJSON(view.History)
	}

	if len(view.History) == 0 {
		out.printf("No %s scans yet\n", p.Module())
		return nil
	}
	tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLEVEL\tSUBJECT")
	for _, item := range view.History {
		r, ok := item.(scan.Result)
		if !ok {
			continue
		}
		label := r.Label()
		if p.Module() == scan.ModulePhone {
			label = phone.Format(label)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ResultID(), r.Level(), label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	out.printf("\n%d safe, %d threats\n", view.Counts.Safe, view.Counts.Threats)
	return nil
}

func (a *app) clearHistory(ctx context.Context, out output, name string) error {
	p, err := a.panel(name)
	if err != nil {
		return err
	}
	if err := p.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear %s history: %w", p.Module(), err)
	}
	out.printf("%s history cleared\n", p.Module())
	return nil
}

func (a *app) printStats(ctx context.Context, out output) error {
	stats, err := a.client.FetchStats(ctx)
	if err != nil {
		return err
	}
	if out.json {
		return out.emitJSON(stats)
	}
	out.printf("Total scans: %d\nThreats:     %d\nSafe:        %d\n", stats.Total, stats.Threats, stats.Safe)
	return nil
}

func (a *app) printAnalytics(ctx context.Context, out output) error {
	overview := a.shell.Analytics(ctx)
	if out.json {
		return out.emitJSON(overview)
	}

	out.printf("Threats: %d  Blocked: %d  Success rate: %.1f%%\n\n",
		overview.TotalThreats, overview.TotalBlocked, overview.SuccessRate)
	tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tSCANNED\tTHREATS\tBLOCKED\tSUCCESS")
	for _, m := range overview.Modules {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\n", m.Name, m.Scanned, m.Threats, m.Blocked, m.SuccessRate)
	}
	return tw.Flush()
}

func (a *app) reportPhone(ctx context.Context, out output, number, category, description string) error {
	if err := a.set.Phone.SubmitReport(ctx, number, category, description); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	out.printf("Reported %s as %s\n", phone.Format(number), category)
	return nil
}

func (a *app) exportBundle(ctx context.Context, out output) error {
	algorithm, err := export.ParseAlgorithm(a.cfg.Export.Compression)
	if err != nil {
		return err
	}
	if err := a.shell.Start(ctx); err != nil {
		a.logger.Warn("some history could not be fetched: %v", err)
	}
	stats, err := a.shell.ExportHistory(ctx, a.cfg.Export.Dir, algorithm)
	if err != nil {
		return err
	}
	if out.json {
		return out.emitJSON(stats)
	}
	out.printf("Saved %d history entries to %s (%d -> %d bytes)\n",
		stats.Entries, stats.Path, stats.OriginalSize, stats.CompressedSize)
	return nil
}

func (a *app) printExports(ctx context.Context, out output, name string) error {
	if a.ledger == nil {
		return fmt.Errorf("export ledger is not available")
	}
	var filter string
	if name != "" {
		m, err := scan.ParseModule(name)
		if err != nil {
			return err
		}
		filter = m.String()
	}
	records, err := a.ledger.List(ctx, filter, 50)
	if err != nil {
		return err
	}
	if out.json {
		return out.emitJSON(records)
	}
	return writeRecords(out.w, records)
}

func writeRecords(w io.Writer, records []*archive.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tMODULE\tFORMAT\tSIZE\tPATH")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Module, r.Format, r.Size, r.Path)
	}
	return tw.Flush()
}
