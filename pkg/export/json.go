// Package export renders scan reports to local files: pretty JSON, PDF and
// compressed history bundles.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Field is one labelled line of a report.
type Field struct {
	Label string
	Value string
}

// Report is the printable form of a scan result.
type Report struct {
	Title       string
	Module      string
	ResultID    string
	ThreatLevel string
	Timestamp   string
	Fields      []Field
	Notes       []string
}

// MarshalPretty encodes v as two-space indented JSON.
func MarshalPretty(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON writes v as pretty JSON to path, creating parent directories.
// It returns the number of bytes written.
func WriteJSON(path string, v any) (int64, error) {
	data, err := MarshalPretty(v)
	if err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
