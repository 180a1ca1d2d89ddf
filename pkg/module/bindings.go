package module

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cybershieldio/sdk/pkg/export"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// EmailBinding returns the email module binding.
func EmailBinding(n *scan.Normalizer) Binding[scan.EmailResult] {
	return Binding[scan.EmailResult]{
		Module:    scan.ModuleEmail,
		Normalize: n.Email,
		Title:     "Email Scan Report",
		Report: func(r scan.EmailResult) string {
			return fmt.Sprintf("Email Scan Report\n\nSubject: %s\nSender: %s\nThreat Level: %s\n\nSummary: %s",
				r.Subject, r.Sender, r.ThreatLevel, r.Summary)
		},
		Fields: func(r scan.EmailResult) []export.Field {
			return []export.Field{
				{Label: "Subject", Value: r.Subject},
				{Label: "Sender", Value: r.Sender},
				{Label: "Spam Score", Value: percent(r.SpamScore)},
				{Label: "Phishing Score", Value: percent(r.PhishingScore)},
				{Label: "Suspicious Links", Value: strconv.Itoa(r.Details.SuspiciousLinks)},
				{Label: "Attachments", Value: strconv.Itoa(r.Details.Attachments)},
				{Label: "Sender Reputation", Value: r.Details.SenderReputation},
				{Label: "Domain Age", Value: r.Details.DomainAge},
			}
		},
		Notes: func(r scan.EmailResult) []string {
			if r.Summary == "" {
				return nil
			}
			return []string{r.Summary}
		},
	}
}

// SMSBinding returns the SMS module binding.
func SMSBinding(n *scan.Normalizer) Binding[scan.SMSResult] {
	return Binding[scan.SMSResult]{
		Module:    scan.ModuleSMS,
		Normalize: n.SMS,
		Title:     "SMS Analysis Report",
		Report: func(r scan.SMSResult) string {
			return fmt.Sprintf("SMS Analysis Report\n\nSender: %s\nMessage: %s\nThreat Level: %s\nSpam Score: %d%%",
				r.Sender, r.Message, r.ThreatLevel, r.SpamScore)
		},
		Fields: func(r scan.SMSResult) []export.Field {
			return []export.Field{
				{Label: "Sender", Value: r.Sender},
				{Label: "Message", Value: r.Message},
				{Label: "Spam Score", Value: percent(r.SpamScore)},
				{Label: "Category", Value: r.Category},
				{Label: "Keywords", Value: strings.Join(r.Keywords, ", ")},
			}
		},
	}
}

// PhoneBinding returns the phone module binding.
func PhoneBinding(n *scan.Normalizer) Binding[scan.PhoneResult] {
	return Binding[scan.PhoneResult]{
		Module:    scan.ModulePhone,
		Normalize: n.Phone,
		Title:     "Phone Check Report",
		Report: func(r scan.PhoneResult) string {
			return fmt.Sprintf("Phone Check Report\n\nNumber: %s\nRisk Level: %s\nScore: %d\nCategory: %s",
				r.PhoneNumber, r.RiskLevel, r.RiskScore, r.Category)
		},
		Fields: func(r scan.PhoneResult) []export.Field {
			return []export.Field{
				{Label: "Number", Value: r.PhoneNumber},
				{Label: "Risk Score", Value: strconv.Itoa(r.RiskScore)},
				{Label: "Category", Value: r.Category},
				{Label: "Reports", Value: strconv.Itoa(r.Reports)},
				{Label: "Location", Value: r.Location},
				{Label: "Carrier", Value: r.Carrier},
				{Label: "Blocked By", Value: strconv.Itoa(r.Details.BlockedBy)},
			}
		},
		Notes: func(r scan.PhoneResult) []string {
			return r.Details.CommonComplaints
		},
	}
}

// WebBinding returns the web module binding.
func WebBinding(n *scan.Normalizer) Binding[scan.WebResult] {
	return Binding[scan.WebResult]{
		Module:    scan.ModuleWeb,
		Normalize: n.Web,
		Title:     "Web Scan Report",
		Report: func(r scan.WebResult) string {
			return fmt.Sprintf("Web Scan Report\n\nURL: %s\nSafety Level: %s\nRisk Score: %d%%\nCurrently: %s",
				r.URL, r.SafetyLevel, r.RiskScore, r.Category)
		},
		Fields: func(r scan.WebResult) []export.Field {
			return []export.Field{
				{Label: "URL", Value: r.URL},
				{Label: "Risk Score", Value: percent(r.RiskScore)},
				{Label: "Category", Value: r.Category},
				{Label: "SSL", Value: r.Details.SSLStatus},
				{Label: "Domain Age", Value: r.Details.DomainAge},
				{Label: "Reputation", Value: r.Details.Reputation},
				{Label: "Redirects", Value: strconv.Itoa(r.Details.Redirects)},
				{Label: "Malware", Value: yesNo(r.Details.MalwareDetected)},
			}
		},
		Notes: func(r scan.WebResult) []string {
			if r.BreachInfo.BreachCount == 0 {
				return nil
			}
			notes := []string{fmt.Sprintf("%d known breaches, last %s", r.BreachInfo.BreachCount, r.BreachInfo.LastBreach)}
			if len(r.BreachInfo.AffectedData) > 0 {
				notes = append(notes, "Exposed: "+strings.Join(r.BreachInfo.AffectedData, ", "))
			}
			return notes
		},
	}
}

// FileBinding returns the file module binding.
func FileBinding(n *scan.Normalizer) Binding[scan.FileResult] {
	return Binding[scan.FileResult]{
		Module:    scan.ModuleFile,
		Normalize: n.File,
		Title:     "File Scan Report",
		Report: func(r scan.FileResult) string {
			return fmt.Sprintf("File Scan Report\n\nFile: %s\nType: %s\nSize: %s\nThreat Level: %s\nRisk Score: %d%%",
				r.FileName, r.FileType, r.FileSize, r.ThreatLevel, r.RiskScore)
		},
		Fields: func(r scan.FileResult) []export.Field {
			return []export.Field{
				{Label: "File", Value: r.FileName},
				{Label: "Type", Value: r.FileType},
				{Label: "Size", Value: r.FileSize},
				{Label: "Risk Score", Value: percent(r.RiskScore)},
				{Label: "Integrity", Value: r.Details.FileIntegrity},
				{Label: "Detections", Value: fmt.Sprintf("%d/%d engines", r.Details.DetectionCount, r.Details.ScanEngines)},
			}
		},
		Notes: func(r scan.FileResult) []string {
			return r.Threats
		},
	}
}

func percent(n int) string {
	return strconv.Itoa(n) + "%"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
