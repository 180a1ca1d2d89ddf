package module

import (
	"context"
	"strings"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// PhoneReporter submits community reports about phone numbers.
// *client.Client implements it.
type PhoneReporter interface {
	ReportPhone(ctx context.Context, report scan.PhoneReport) error
}

// ReportCategories are the categories offered for phone reports.
var ReportCategories = []string{"Scam", "Telemarketer", "Robocall", "Spam", "Fraud", "Other"}

// PhoneController is the phone module controller. Besides checking numbers
// it can submit reports about them.
type PhoneController struct {
	*Controller[scan.PhoneResult]
	reporter PhoneReporter
}

// NewPhone creates the phone controller. reporter may be nil, in which case
// SubmitReport fails.
func NewPhone(svc Service, reporter PhoneReporter, n *scan.Normalizer, opts *Options) *PhoneController {
	return &PhoneController{
		Controller: NewController(svc, PhoneBinding(n), opts),
		reporter:   reporter,
	}
}

// SubmitReport posts a report and refreshes history on success. Unlike
// scans, the outcome is returned for the caller to show.
func (p *PhoneController) SubmitReport(ctx context.Context, number, category, description string) error {
	const op = "module.SubmitReport"
	report := scan.PhoneReport{
		Number:      strings.TrimSpace(number),
		Category:    strings.TrimSpace(category),
		Description: description,
	}
	if report.Empty() {
		p.metrics.CounterInc(metrics.PhoneReportsTotal.Name, "outcome", metrics.OutcomeRejected)
		return sdkerrors.E(op, sdkerrors.ErrEmptyInput)
	}
	if p.reporter == nil {
		return sdkerrors.E(sdkerrors.KindInternal, op, "phone reports are not available")
	}

	err := p.reporter.ReportPhone(ctx, report)
	if p.auditor != nil {
		p.auditor.PhoneReported(report.Category, err)
	}
	if err != nil {
		p.logger.Error("phone report failed: %v", err)
		p.metrics.CounterInc(metrics.PhoneReportsTotal.Name, "outcome", metrics.OutcomeFailed)
		return sdkerrors.Wrap(err, op)
	}

	p.metrics.CounterInc(metrics.PhoneReportsTotal.Name, "outcome", metrics.OutcomeSuccess)
	p.logger.Info("phone report submitted: %s", report.Category)
	_ = p.RefreshHistory(ctx)
	return nil
}
