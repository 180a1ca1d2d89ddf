// Package audit records user-visible actions as JSON lines: scans, history
// clears, phone reports and exports. Events are buffered and flushed
// periodically or when the buffer fills.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Dashboard lifecycle
	EventDashboardStart EventType = "dashboard_start"
	EventDashboardStop  EventType = "dashboard_stop"

	// Scan events
	EventScanCompleted EventType = "scan_completed"
	EventScanFailed    EventType = "scan_failed"
	EventScanRejected  EventType = "scan_rejected"

	// History events
	EventHistoryCleared     EventType = "history_cleared"
	EventHistoryClearFailed EventType = "history_clear_failed"

	// Community reports
	EventPhoneReported     EventType = "phone_reported"
	EventPhoneReportFailed EventType = "phone_report_failed"

	// Local exports
	EventReportExported EventType = "report_exported"
	EventExportFailed   EventType = "export_failed"
)

// Severity represents log severity level.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARN"
	SeverityError   Severity = "ERROR"
)

// Event represents an audit event.
type Event struct {
	Timestamp   time.Time      `json:"timestamp"`
	Type        EventType      `json:"type"`
	Severity    Severity       `json:"severity"`
	Source      string         `json:"source,omitempty"`
	Module      string         `json:"module,omitempty"`
	ResultID    string         `json:"result_id,omitempty"`
	ThreatLevel string         `json:"threat_level,omitempty"`
	Message     string         `json:"message"`
	Error       string         `json:"error,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// LoggerConfig configures the audit logger.
type LoggerConfig struct {
	// Source identifies the process writing events (e.g. the hostname).
	Source string `yaml:"source" json:"source"`

	// LogFile is the path to the audit log file.
	// Default: ~/.cybershield/audit.log
	LogFile string `yaml:"log_file" json:"log_file"`

	// BufferSize is the number of events to buffer before flushing.
	// Default: 100
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`

	// FlushInterval is how often to flush buffered events.
	// Default: 5 seconds
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`

	// Verbose echoes events to Console.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Console receives verbose output. Default: stdout.
	Console io.Writer `yaml:"-" json:"-"`
}

// DefaultLoggerConfig returns sensible defaults.
func DefaultLoggerConfig() *LoggerConfig {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = os.TempDir()
	}
	return &LoggerConfig{
		LogFile:       filepath.Join(home, ".cybershield", "audit.log"),
		BufferSize:    100,
		FlushInterval: 5 * time.Second,
	}
}

// Logger is the audit logger.
type Logger struct {
	config *LoggerConfig

	mu     sync.Mutex // guards file and running
	file   *os.File
	closed bool

	bufferMu sync.Mutex
	buffer   []Event

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewLogger opens (or creates) the audit log file.
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.LogFile == "" {
		config.LogFile = DefaultLoggerConfig().LogFile
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.Console == nil {
		config.Console = os.Stdout
	}

	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	// 0640 = owner read/write, group read
	file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		config: config,
		file:   file,
		buffer: make([]Event, 0, config.BufferSize),
	}, nil
}

// Start begins background flushing.
func (l *Logger) Start() {
	l.mu.Lock()
	if l.running || l.closed {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.mu.Unlock()

	l.wg.Add(1)
	go l.flushLoop()
}

// Stop stops background flushing, writes remaining events and closes the
// file. It is safe to call more than once.
func (l *Logger) Stop() error {
	l.mu.Lock()
	if l.running {
		l.running = false
		close(l.stopCh)
	}
	l.mu.Unlock()

	l.wg.Wait()
	l.Flush()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// Log records an audit event. A full buffer is flushed before returning.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Source == "" {
		event.Source = l.config.Source
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	l.bufferMu.Lock()
	l.buffer = append(l.buffer, event)
	full := len(l.buffer) >= l.config.BufferSize
	l.bufferMu.Unlock()

	if l.config.Verbose {
		l.printEvent(event)
	}
	if full {
		l.Flush()
	}
}

// ScanCompleted records a successful scan.
func (l *Logger) ScanCompleted(module, resultID, level string, duration time.Duration) {
	l.Log(Event{
		Type:        EventScanCompleted,
		Severity:    SeverityInfo,
		Module:      module,
		ResultID:    resultID,
		ThreatLevel: level,
		Message:     fmt.Sprintf("%s scan completed: %s", module, level),
		DurationMS:  duration.Milliseconds(),
	})
}

// ScanFailed records a scan that produced no result.
func (l *Logger) ScanFailed(module string, err error) {
	l.Log(withError(Event{
		Type:     EventScanFailed,
		Severity: SeverityWarning,
		Module:   module,
		Message:  module + " scan failed",
	}, err))
}

// ScanRejected records a scan refused before any request was sent, such as
// blank input or a scan already in flight.
func (l *Logger) ScanRejected(module string, err error) {
	l.Log(withError(Event{
		Type:     EventScanRejected,
		Severity: SeverityWarning,
		Module:   module,
		Message:  module + " scan rejected",
	}, err))
}

// DashboardStarted records the dashboard server coming up on addr.
func (l *Logger) DashboardStarted(addr string) {
	l.Log(Event{
		Type:     EventDashboardStart,
		Severity: SeverityInfo,
		Message:  "dashboard listening on " + addr,
		Details:  map[string]any{"listen": addr},
	})
}

// DashboardStopped records the dashboard shutting down. err is the
// server's exit error, if any.
func (l *Logger) DashboardStopped(err error) {
	event := Event{
		Type:     EventDashboardStop,
		Severity: SeverityInfo,
		Message:  "dashboard stopped",
	}
	if err != nil {
		event.Severity = SeverityError
		event = withError(event, err)
	}
	l.Log(event)
}

// HistoryCleared records a history clear attempt.
func (l *Logger) HistoryCleared(module string, err error) {
	if err != nil {
		l.Log(withError(Event{
			Type:     EventHistoryClearFailed,
			Severity: SeverityError,
			Module:   module,
			Message:  module + " history clear failed",
		}, err))
		return
	}
	l.Log(Event{
		Type:     EventHistoryCleared,
		Severity: SeverityInfo,
		Module:   module,
		Message:  module + " history cleared",
	})
}

// PhoneReported records a phone report submission. The number itself is
// not logged.
func (l *Logger) PhoneReported(category string, err error) {
	event := Event{
		Type:     EventPhoneReported,
		Severity: SeverityInfo,
		Module:   "phone",
		Message:  "phone number reported",
		Details:  map[string]any{"category": category},
	}
	if err != nil {
		event.Type = EventPhoneReportFailed
		event.Severity = SeverityError
		event.Message = "phone report failed"
		event = withError(event, err)
	}
	l.Log(event)
}

// Exported records a local report export.
func (l *Logger) Exported(module, format, path string, err error) {
	event := Event{
		Type:     EventReportExported,
		Severity: SeverityInfo,
		Module:   module,
		Message:  fmt.Sprintf("%s report exported as %s", module, format),
		Details:  map[string]any{"format": format, "path": path},
	}
	if err != nil {
		event.Type = EventExportFailed
		event.Severity = SeverityError
		event.Message = fmt.Sprintf("%s %s export failed", module, format)
		event = withError(event, err)
	}
	l.Log(event)
}

func withError(e Event, err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Flush writes buffered events to disk.
func (l *Logger) Flush() {
	l.bufferMu.Lock()
	if len(l.buffer) == 0 {
		l.bufferMu.Unlock()
		return
	}
	events := l.buffer
	l.buffer = make([]Event, 0, l.config.BufferSize)
	l.bufferMu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		data = append(data, '\n')
		_, _ = l.file.Write(data)
	}
	_ = l.file.Sync()
}

// flushLoop periodically flushes buffered events.
func (l *Logger) flushLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.Flush()
		}
	}
}

// printEvent prints an event in human-readable form.
func (l *Logger) printEvent(event Event) {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.config.Console, "[%s] [%s] %s: %s\n", timestamp, event.Severity, event.Type, event.Message)
	if event.Error != "" {
		fmt.Fprintf(l.config.Console, "  Error: %s\n", event.Error)
	}
}
