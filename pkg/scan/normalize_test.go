package scan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustRaw(t *testing.T, s string) Raw {
	t.Helper()
	var r Raw
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("unmarshal %s: %v", s, err)
	}
	return r
}

func TestNormalizer_File_NoDetails(t *testing.T) {
	n := NewNormalizer(DisplayDefaults{})
	levels := []ThreatLevel{LevelSafe, LevelSuspicious, LevelDangerous, LevelMalicious, "Weird", ""}

	for _, src := range []Source{SourceScan, SourceHistory} {
		for _, level := range levels {
			t.Run(src.String()+"/"+string(level), func(t *testing.T) {
				raw := Raw{"id": 7.0, "filename": "a.exe", "threatLevel": string(level), "score": 40.0}
				got := n.File(raw, src)

				if got.Details.VirusDetected != (level == LevelDangerous) {
					t.Errorf("VirusDetected = %v for %q", got.Details.VirusDetected, level)
				}
				if got.Details.SuspiciousActivity != (level == LevelSuspicious) {
					t.Errorf("SuspiciousActivity = %v for %q", got.Details.SuspiciousActivity, level)
				}
				wantIntegrity := "Compromised"
				if level == LevelSafe {
					wantIntegrity = "Good"
				}
				if got.Details.FileIntegrity != wantIntegrity {
					t.Errorf("FileIntegrity = %q, want %q", got.Details.FileIntegrity, wantIntegrity)
				}

				wantEngines, wantDetections := 45, 5
				if src == SourceHistory {
					wantEngines, wantDetections = 1, 1
				}
				if level == LevelSafe {
					wantDetections = 0
				}
				if got.Details.ScanEngines != wantEngines {
					t.Errorf("ScanEngines = %d, want %d", got.Details.ScanEngines, wantEngines)
				}
				if got.Details.DetectionCount != wantDetections {
					t.Errorf("DetectionCount = %d, want %d", got.Details.DetectionCount, wantDetections)
				}
				if got.FileSize != Unknown || got.FileType != Unknown {
					t.Errorf("size/type = %q/%q, want Unknown", got.FileSize, got.FileType)
				}
				if got.Threats == nil || len(got.Threats) != 0 {
					t.Errorf("Threats = %#v, want empty non-nil", got.Threats)
				}
				if got.ID != "7" {
					t.Errorf("ID = %q, want 7", got.ID)
				}
			})
		}
	}
}

func TestNormalizer_File_Details(t *testing.T) {
	n := NewNormalizer(DisplayDefaults{ScanEngines: 60})
	raw := mustRaw(t, `{
		"id": "f1", "filename": "doc.pdf", "type": "application/pdf", "size": "1.20 MB",
		"threatLevel": "Dangerous", "score": 92,
		"details": {"malwareType": "Trojan.Generic", "detectionCount": 12}
	}`)

	got := n.File(raw, SourceScan)
	if got.Details.ScanEngines != 60 {
		t.Errorf("ScanEngines = %d, want configured 60", got.Details.ScanEngines)
	}
	if got.Details.DetectionCount != 12 {
		t.Errorf("DetectionCount = %d, want 12", got.Details.DetectionCount)
	}
	if !reflect.DeepEqual(got.Threats, []string{"Trojan.Generic"}) {
		t.Errorf("Threats = %v", got.Threats)
	}
	if got.FileType != "application/pdf" || got.FileSize != "1.20 MB" {
		t.Errorf("type/size = %q/%q", got.FileType, got.FileSize)
	}

	raw["details"] = map[string]any{"malwareType": "None"}
	if got := n.File(raw, SourceScan); len(got.Threats) != 0 {
		t.Errorf("malwareType None should give no threats, got %v", got.Threats)
	}
}

func TestNormalizer_Phone(t *testing.T) {
	var n Normalizer

	got := n.Phone(mustRaw(t, `{"id": 3, "number": "5551234567", "threatLevel": "Suspicious", "score": 55}`), SourceScan)
	want := PhoneResult{
		ID:          "3",
		PhoneNumber: "5551234567",
		RiskLevel:   LevelSuspicious,
		RiskScore:   55,
		Category:    Unknown,
		Location:    Unknown,
		Carrier:     Unknown,
		Details:     PhoneDetails{CommonComplaints: []string{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Phone() = %+v, want %+v", got, want)
	}

	got = n.Phone(mustRaw(t, `{
		"number": "555", "carrier": "TopCarrier", "reports": 2,
		"details": {"category": "Robocall", "location": "Ohio", "reports": 9, "carrier": ""}
	}`), SourceHistory)
	if got.Category != "Robocall" || got.Location != "Ohio" {
		t.Errorf("category/location = %q/%q", got.Category, got.Location)
	}
	if got.Carrier != "TopCarrier" {
		t.Errorf("Carrier = %q, want top-level fallback", got.Carrier)
	}
	if got.Reports != 9 {
		t.Errorf("Reports = %d, want 9 from details", got.Reports)
	}

	got = n.Phone(mustRaw(t, `{"number": "555", "reports": 4, "details": {}}`), SourceHistory)
	if got.Reports != 0 {
		t.Errorf("Reports = %d, want 0 when only the top level carries it", got.Reports)
	}

	got = n.Phone(mustRaw(t, `{"reports": 5, "details": {"reports": 0}}`), SourceHistory)
	if got.Reports != 0 {
		t.Errorf("Reports = %d, want 0 from details", got.Reports)
	}
}

func TestNormalizer_SMS(t *testing.T) {
	var n Normalizer
	tests := []struct {
		name         string
		raw          string
		wantMessage  string
		wantSender   string
		wantScore    int
		wantCategory string
	}{
		{"content wins", `{"content": "win now", "message": "other", "threatLevel": "Spam", "score": 88}`, "win now", Unknown, 88, "Scam"},
		{"message fallback", `{"message": "hello", "sender": "Mom", "threatLevel": "Safe", "spamScore": 3}`, "hello", "Mom", 3, "Legitimate"},
		{"nothing", `{"threatLevel": "Suspicious"}`, "", Unknown, 0, "Scam"},
		{"category supplied", `{"content": "x", "threatLevel": "Safe", "category": "Promotional"}`, "x", Unknown, 0, "Promotional"},
		{"null fields", `{"content": null, "sender": null, "score": null, "threatLevel": "Safe"}`, "", Unknown, 0, "Legitimate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.SMS(mustRaw(t, tt.raw), SourceHistory)
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Sender != tt.wantSender {
				t.Errorf("Sender = %q, want %q", got.Sender, tt.wantSender)
			}
			if got.SpamScore != tt.wantScore {
				t.Errorf("SpamScore = %d, want %d", got.SpamScore, tt.wantScore)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Keywords == nil {
				t.Error("Keywords should be empty, not nil")
			}
		})
	}
}

func TestNormalizer_Web(t *testing.T) {
	var n Normalizer
	tests := []struct {
		name           string
		raw            string
		wantSSL        string
		wantAge        string
		wantReputation string
		wantCategory   string
		wantMalware    bool
	}{
		{"ssl key", `{"url": "https://a.com", "threatLevel": "Safe", "details": {"ssl": "Valid", "domainAge": "5 years"}}`, "Valid", "5 years", "Good", "Safe", false},
		{"sslStatus preferred", `{"url": "x", "threatLevel": "Suspicious", "details": {"ssl": "Missing", "sslStatus": "Invalid"}}`, "Invalid", Unknown, "Bad", "Suspicious", false},
		{"no details", `{"url": "x", "threatLevel": "Dangerous"}`, Unknown, Unknown, "Bad", "Suspicious", true},
		{"unknown level", `{"url": "x", "threatLevel": "Odd"}`, Unknown, Unknown, "Bad", "Suspicious", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Web(mustRaw(t, tt.raw), SourceScan)
			if got.Details.SSLStatus != tt.wantSSL {
				t.Errorf("SSLStatus = %q, want %q", got.Details.SSLStatus, tt.wantSSL)
			}
			if got.Details.DomainAge != tt.wantAge {
				t.Errorf("DomainAge = %q, want %q", got.Details.DomainAge, tt.wantAge)
			}
			if got.Details.Reputation != tt.wantReputation {
				t.Errorf("Reputation = %q, want %q", got.Details.Reputation, tt.wantReputation)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Details.MalwareDetected != tt.wantMalware {
				t.Errorf("MalwareDetected = %v, want %v", got.Details.MalwareDetected, tt.wantMalware)
			}
			if got.Details.Redirects != 0 || got.Details.BreachHistory {
				t.Error("redirects/breach history should be zero")
			}
			if got.BreachInfo.AffectedData == nil {
				t.Error("AffectedData should be empty, not nil")
			}
		})
	}
}

func TestNormalizer_Web_BreachInfo(t *testing.T) {
	var n Normalizer
	tests := []struct {
		name        string
		raw         string
		wantCount   int
		wantLast    string
		wantData    []string
		wantHistory bool
	}{
		{
			"top level",
			`{"url": "x", "threatLevel": "Suspicious", "breachInfo": {"breachCount": 2, "lastBreach": "2024-03-01", "affectedData": ["Emails", "Passwords"]}}`,
			2, "2024-03-01", []string{"Emails", "Passwords"}, true,
		},
		{
			"details fallback",
			`{"url": "x", "threatLevel": "Safe", "details": {"breachInfo": {"breachCount": 1}}}`,
			1, "", []string{}, true,
		},
		{
			"zero count",
			`{"url": "x", "threatLevel": "Safe", "breachInfo": {"breachCount": 0, "affectedData": null}}`,
			0, "", []string{}, false,
		},
		{
			"absent",
			`{"url": "x", "threatLevel": "Safe"}`,
			0, "", []string{}, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Web(mustRaw(t, tt.raw), SourceScan)
			if got.BreachInfo.BreachCount != tt.wantCount {
				t.Errorf("BreachCount = %d, want %d", got.BreachInfo.BreachCount, tt.wantCount)
			}
			if got.BreachInfo.LastBreach != tt.wantLast {
				t.Errorf("LastBreach = %q, want %q", got.BreachInfo.LastBreach, tt.wantLast)
			}
			if !reflect.DeepEqual(got.BreachInfo.AffectedData, tt.wantData) {
				t.Errorf("AffectedData = %#v, want %#v", got.BreachInfo.AffectedData, tt.wantData)
			}
			if got.Details.BreachHistory != tt.wantHistory {
				t.Errorf("BreachHistory = %v, want %v", got.Details.BreachHistory, tt.wantHistory)
			}
		})
	}
}

func TestNormalizer_Email(t *testing.T) {
	var n Normalizer
	got := n.Email(mustRaw(t, `{
		"id": "e1", "subject": "Invoice", "sender": "a@b.c", "timestamp": "now",
		"threatLevel": "Dangerous", "spamScore": 70, "phishingScore": 91, "summary": "phish",
		"details": {"suspiciousLinks": 3, "attachments": 1, "senderReputation": "Bad", "domainAge": "2 days"}
	}`), SourceScan)
	want := EmailResult{
		ID: "e1", Subject: "Invoice", Sender: "a@b.c", Timestamp: "now",
		ThreatLevel: LevelDangerous, SpamScore: 70, PhishingScore: 91, Summary: "phish",
		Details: EmailDetails{SuspiciousLinks: 3, Attachments: 1, SenderReputation: "Bad", DomainAge: "2 days"},
	}
	if got != want {
		t.Errorf("Email() = %+v, want %+v", got, want)
	}

	// No defaulting for email.
	if got := n.Email(Raw{}, SourceScan); got != (EmailResult{}) {
		t.Errorf("Email(empty) = %+v, want zero value", got)
	}
}

func TestDisplayDefaults(t *testing.T) {
	if got := NewNormalizer(DisplayDefaults{}).Display(); got != DefaultDisplayDefaults() {
		t.Errorf("zero DisplayDefaults should fill stock values, got %+v", got)
	}
	var nilNorm *Normalizer
	if got := nilNorm.Display(); got.ScanEngines != DefaultScanEngines {
		t.Errorf("nil normalizer ScanEngines = %d", got.ScanEngines)
	}
}
