package client

import (
	"context"
	"net/http"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// Stats is the response of /api/stats.
type Stats struct {
	Total   int `json:"total"`
	Threats int `json:"threats"`
	Safe    int `json:"safe"`
}

// Analytics is the response of /api/analytics.
type Analytics struct {
	TotalThreats int                           `json:"totalThreats"`
	TotalBlocked int                           `json:"totalBlocked"`
	SuccessRate  float64                       `json:"successRate"`
	Modules      []ModuleSummary               `json:"modules"`
	Trend        []TrendPoint                  `json:"trend"`
	Severity     []SeveritySlice               `json:"severity"`
	ModuleTrends map[string][]ModuleTrendPoint `json:"moduleTrends"`
	RadarData    []RadarPoint                  `json:"radarData"`
}

// ModuleSummary holds per-module totals.
type ModuleSummary struct {
	Name    string `json:"name"`
	Scanned int    `json:"scanned"`
	Threats int    `json:"threats"`
	Blocked int    `json:"blocked"`
}

// TrendPoint is one day of overall activity.
type TrendPoint struct {
	Date    string `json:"date"`
	Scans   int    `json:"scans"`
	Threats int    `json:"threats"`
}

// SeveritySlice is one segment of the severity breakdown chart.
type SeveritySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

// ModuleTrendPoint is one day of activity for a single module.
type ModuleTrendPoint struct {
	Date  string `json:"date"`
	Scans int    `json:"scans"`
}

// RadarPoint is one axis of the module coverage radar chart.
type RadarPoint struct {
	Subject  string `json:"subject"`
	A        int    `json:"A"`
	B        int    `json:"B"`
	C        int    `json:"C"`
	FullMark int    `json:"fullMark"`
}

// Normalize replaces nil collections with empty ones.
func (a *Analytics) Normalize() {
	if a.Modules == nil {
		a.Modules = []ModuleSummary{}
	}
	if a.Trend == nil {
		a.Trend = []TrendPoint{}
	}
	if a.Severity == nil {
		a.Severity = []SeveritySlice{}
	}
	if a.ModuleTrends == nil {
		a.ModuleTrends = map[string][]ModuleTrendPoint{}
	}
	if a.RadarData == nil {
		a.RadarData = []RadarPoint{}
	}
}

// FetchStats returns the aggregate scan counts.
func (c *Client) FetchStats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := c.getJSON(ctx, "client.FetchStats", "/api/stats", &s); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// FetchAnalytics returns the analytics summary. A null body is reported as
// a decode error so callers can fall back.
func (c *Client) FetchAnalytics(ctx context.Context) (Analytics, error) {
	const op = "client.FetchAnalytics"
	var a *Analytics
	if err := c.getJSON(ctx, op, "/api/analytics", &a); err != nil {
		return Analytics{}, err
	}
	if a == nil {
		return Analytics{}, sdkerrors.E(sdkerrors.KindDecode, op, "empty analytics")
	}
	a.Normalize()
	return *a, nil
}

// ReportPhone submits a community report for a phone number.
func (c *Client) ReportPhone(ctx context.Context, report scan.PhoneReport) error {
	const op = "client.ReportPhone"
	if report.Empty() {
		return sdkerrors.E(op, sdkerrors.ErrEmptyInput)
	}
	if _, err := c.doRequest(ctx, op, http.MethodPost, "/api/report/phone", report); err != nil {
		return err
	}
	c.logger.Info("reported phone number in category %s", report.Category)
	return nil
}

// Ping checks that the service answers /api/stats. It is not retried.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, "client.Ping", http.MethodGet, "/api/stats", nil)
	return err
}
