package module

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cybershieldio/sdk/pkg/client"
	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/metrics"
)

func newPhoneController(t *testing.T, f *fakeService, opts *Options) *PhoneController {
	t.Helper()
	c := newFakeClient(t, f)
	return NewPhone(c, c, nil, opts)
}

func TestPhoneController_SubmitReport(t *testing.T) {
	f := newFakeService()
	f.history["phone"] = `[{"id":"1","number":"5551234567","threatLevel":"Dangerous"}]`
	auditor := &recordingAuditor{}
	m := metrics.NewInMemoryCollector()
	phone := newPhoneController(t, f, &Options{Auditor: auditor, Metrics: m})

	err := phone.SubmitReport(context.Background(), " (555) 123-4567 ", "Robocall", "calls at night")
	if err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	body := f.lastBody()
	if body["number"] != "(555) 123-4567" || body["category"] != "Robocall" || body["description"] != "calls at night" {
		t.Errorf("report body = %v", body)
	}
	if len(phone.History()) != 1 {
		t.Error("history should be refreshed after a report")
	}
	if got := m.GetCounter(metrics.PhoneReportsTotal.Name, "outcome", metrics.OutcomeSuccess); got != 1 {
		t.Errorf("reports success = %v", got)
	}
	if ev := auditor.Events(); len(ev) != 1 || ev[0] != "phone_reported:Robocall" {
		t.Errorf("audit = %v", ev)
	}
}

func TestPhoneController_SubmitReportValidation(t *testing.T) {
	tests := []struct {
		name, number, category string
	}{
		{"no number", "", "Scam"},
		{"no category", "5551234567", ""},
		{"blank both", "  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService()
			phone := newPhoneController(t, f, nil)
			err := phone.SubmitReport(context.Background(), tt.number, tt.category, "")
			if !errors.Is(err, sdkerrors.ErrEmptyInput) {
				t.Errorf("err = %v, want ErrEmptyInput", err)
			}
			if f.reports.Load() != 0 {
				t.Error("invalid report must not be sent")
			}
		})
	}
}

func TestPhoneController_SubmitReportFailure(t *testing.T) {
	f := newFakeService()
	f.reportStatus = http.StatusBadRequest
	auditor := &recordingAuditor{}
	phone := newPhoneController(t, f, &Options{Auditor: auditor})

	err := phone.SubmitReport(context.Background(), "5551234567", "Scam", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if httpErr, ok := client.IsHTTPError(err); !ok || httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("err = %v, want client error", err)
	}
	if f.fetches.Load() != 0 {
		t.Error("failed report must not refresh history")
	}
	if ev := auditor.Events(); ev[0] != "phone_report_failed:Scam" {
		t.Errorf("audit = %v", ev)
	}
}

func TestPhoneController_NoReporter(t *testing.T) {
	phone := NewPhone(newFakeClient(t, newFakeService()), nil, nil, nil)
	if err := phone.SubmitReport(context.Background(), "5551234567", "Scam", ""); err == nil {
		t.Error("SubmitReport without reporter should fail")
	}
}
