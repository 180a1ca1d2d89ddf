// CyberShield CLI - client for the CyberShield threat scanning service
//
// Usage:
//
//  1. ONE-SHOT SCAN:
//     cybershield -module web -scan https://example.com
//     cybershield -module email -scan "body text" -subject "Invoice" -sender billing@example.com
//     cybershield -module file -scan ./download.exe -export pdf
//
//  2. HISTORY AND ANALYTICS:
//     cybershield -module sms -history
//     cybershield -module sms -clear
//     cybershield -analytics
//
//  3. DASHBOARD:
//     cybershield -serve -config cybershield.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybershieldio/sdk/pkg/core"
	"github.com/cybershieldio/sdk/pkg/metrics"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config file")
	apiURL := flag.String("api-url", "", "Service URL (or "+envAPIURL+" env)")
	apiKey := flag.String("api-key", "", "Service API key (or "+envAPIKey+" env)")
	timeout := flag.Duration("timeout", 0, "Request timeout (default 30s)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	showVersion := flag.Bool("version", false, "Show version")

	moduleName := flag.String("module", "", "Module: email, sms, phone, web or file")
	subject := flag.String("scan", "", "Scan this content, number, URL or file path")
	emailSubject := flag.String("subject", "", "Email subject line (email scans)")
	sender := flag.String("sender", "", "Sender address or number (email and sms scans)")
	history := flag.Bool("history", false, "Print the module's scan history")
	clearHistory := flag.Bool("clear", false, "Clear the module's scan history")
	stats := flag.Bool("stats", false, "Print aggregate scan statistics")
	showAnalytics := flag.Bool("analytics", false, "Print the analytics overview")
	outputJSON := flag.Bool("json", false, "Output results as JSON")

	reportNumber := flag.String("phone-report", "", "Report this phone number")
	category := flag.String("category", "Scam", "Phone report category")
	description := flag.String("description", "", "Phone report description")

	exportFormat := flag.String("export", "", "Export: json or pdf (after -scan), bundle (all history)")
	outputDir := flag.String("output", "", "Export directory (default from config)")
	compression := flag.String("compression", "", "Bundle compression: zstd or gzip")
	listExports := flag.Bool("exports", false, "List recorded exports")

	serve := flag.Bool("serve", false, "Run the local dashboard server")
	listen := flag.String("listen", "", "Dashboard listen address (default :8080)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("%s version %s\n", core.AppName, core.AppVersion)
		os.Exit(0)
	}

	cfg, err := resolveConfig(*configPath, connectionOverrides{
		APIURL:  *apiURL,
		APIKey:  *apiKey,
		Timeout: *timeout,
		Verbose: *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Export.Dir = *outputDir
	}
	if *compression != "" {
		cfg.Export.Compression = *compression
	}
	if *listen != "" {
		cfg.Dashboard.Listen = *listen
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var collector metrics.Collector
	if *serve {
		collector = metrics.NewPrometheusCollector(&metrics.PrometheusConfig{RegisterDefaultMetrics: true})
	}

	a, err := newApp(cfg, collector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := output{w: os.Stdout, json: *outputJSON}
	start := time.Now()
	switch {
	case *serve:
		err = a.serve(ctx)
	case *reportNumber != "":
		err = a.reportPhone(ctx, out, *reportNumber, *category, *description)
	case *showAnalytics:
		err = a.printAnalytics(ctx, out)
	case *stats:
		err = a.printStats(ctx, out)
	case *listExports:
		err = a.printExports(ctx, out, *moduleName)
	case *exportFormat == "bundle":
		err = a.exportBundle(ctx, out)
	case *moduleName == "":
		flag.Usage()
		err = fmt.Errorf("-module is required")
	case *subject != "":
		err = a.runScan(ctx, out, *moduleName, scanInput{
			Subject:      *subject,
			EmailSubject: *emailSubject,
			Sender:       *sender,
		}, *exportFormat)
	case *clearHistory:
		err = a.clearHistory(ctx, out, *moduleName)
	case *history:
		err = a.printHistory(ctx, out, *moduleName)
	default:
		flag.Usage()
		err = fmt.Errorf("nothing to do: give -scan, -history or -clear")
	}
	a.logger.Debug("finished in %s", time.Since(start).Round(time.Millisecond))

	if cerr := a.Close(); cerr != nil {
		a.logger.Warn("shutdown: %v", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
