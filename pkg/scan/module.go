// Package scan defines the CyberShield scan modules, their result records and
// the normalizers that turn loosely-typed service responses into those records.
package scan

import (
	"strings"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
)

// Module identifies one of the scanning domains.
type Module string

const (
	ModuleEmail Module = "email"
	ModuleSMS   Module = "sms"
	ModulePhone Module = "phone"
	ModuleWeb   Module = "web"
	ModuleFile  Module = "file"
)

// AllModules returns every module in display order.
func AllModules() []Module {
	return []Module{ModuleEmail, ModuleSMS, ModulePhone, ModuleWeb, ModuleFile}
}

// ParseModule converts a module name to a Module. Matching is
// case-insensitive and accepts the dashboard tab alias "files".
func ParseModule(s string) (Module, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return ModuleEmail, nil
	case "sms":
		return ModuleSMS, nil
	case "phone":
		return ModulePhone, nil
	case "web":
		return ModuleWeb, nil
	case "file", "files":
		return ModuleFile, nil
	}
	return "", sdkerrors.E("scan.ParseModule", sdkerrors.ErrUnknownModule, s)
}

// IsValid reports whether m is a known module.
func (m Module) IsValid() bool {
	switch m {
	case ModuleEmail, ModuleSMS, ModulePhone, ModuleWeb, ModuleFile:
		return true
	}
	return false
}

func (m Module) String() string {
	return string(m)
}

// Endpoint returns the scan endpoint path. Email scans use the bare /api/scan.
func (m Module) Endpoint() string {
	if m == ModuleEmail {
		return "/api/scan"
	}
	return "/api/scan/" + string(m)
}

// HistoryType returns the value of the ?type= history query parameter.
func (m Module) HistoryType() string {
	return string(m)
}

// DisplayName returns the name the service uses in analytics summaries.
func (m Module) DisplayName() string {
	switch m {
	case ModuleEmail:
		return "Email Security"
	case ModuleSMS:
		return "SMS Protection"
	case ModulePhone:
		return "Phone Security"
	case ModuleWeb:
		return "Web Scanner"
	case ModuleFile:
		return "File Scanner"
	}
	return string(m)
}

// ReportFileName returns the file name used for JSON report exports.
func (m Module) ReportFileName() string {
	if m == ModuleEmail {
		return "scan_report.json"
	}
	return string(m) + "_report.json"
}

// PDFFileName returns the file name used for PDF report exports.
func (m Module) PDFFileName() string {
	return string(m) + "_report.pdf"
}
