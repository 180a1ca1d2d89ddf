package module

import (
	"context"

	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/scan"
	"github.com/cybershieldio/sdk/pkg/threat"
)

// View is a rendering snapshot of one controller.
type View struct {
	Module       scan.Module   `json:"module"`
	Name         string        `json:"name"`
	Current      any           `json:"current"`
	CurrentStyle *threat.Style `json:"currentStyle,omitempty"`
	History      []any         `json:"history"`
	Counts       threat.Counts `json:"counts"`
	Stats        client.Stats  `json:"stats"`
	Scanning     bool          `json:"scanning"`
}

// Panel is the type-erased face of a Controller, used by the dashboard to
// drive every module uniformly.
type Panel interface {
	Module() scan.Module
	Start(ctx context.Context) error
	Submit(ctx context.Context, req scan.Request) (scan.Result, error)
	RefreshHistory(ctx context.Context) error
	RefreshStats(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	Scanning() bool
	CopyReport() (string, error)
	Export(ctx context.Context, dir string) (string, error)
	ExportPDF(ctx context.Context, dir string) (string, error)
	View() View
	HistoryItems() []any
}

var (
	_ Panel = (*Controller[scan.EmailResult])(nil)
	_ Panel = (*PhoneController)(nil)
	_ Panel = (*FileController)(nil)
)
