package scan

// Source tells a normalizer where a raw record came from. File records
// use different placeholder engine counts for fresh scans and history.
type Source int

const (
	// SourceScan is a response to a scan request.
	SourceScan Source = iota
	// SourceHistory is an entry from /api/history.
	SourceHistory
)

func (s Source) String() string {
	if s == SourceHistory {
		return "history"
	}
	return "scan"
}

// Placeholder engine counts shown for file results the service did not
// annotate.
const (
	DefaultScanEngines           = 45
	DefaultHistoryScanEngines    = 1
	DefaultDetectionCount        = 5
	DefaultHistoryDetectionCount = 1
)

// Unknown is the display value for absent string attributes.
const Unknown = "Unknown"

// DisplayDefaults holds the placeholder counts used when a file result has
// no scanEngines or detectionCount. Zero fields fall back to the package
// defaults.
type DisplayDefaults struct {
	ScanEngines           int `yaml:"scan_engines" json:"scan_engines"`
	HistoryScanEngines    int `yaml:"history_scan_engines" json:"history_scan_engines"`
	DetectionCount        int `yaml:"detection_count" json:"detection_count"`
	HistoryDetectionCount int `yaml:"history_detection_count" json:"history_detection_count"`
}

// DefaultDisplayDefaults returns the stock placeholder counts.
func DefaultDisplayDefaults() DisplayDefaults {
	return DisplayDefaults{
		ScanEngines:           DefaultScanEngines,
		HistoryScanEngines:    DefaultHistoryScanEngines,
		DetectionCount:        DefaultDetectionCount,
		HistoryDetectionCount: DefaultHistoryDetectionCount,
	}
}

func (d DisplayDefaults) withDefaults() DisplayDefaults {
	def := DefaultDisplayDefaults()
	if d.ScanEngines <= 0 {
		d.ScanEngines = def.ScanEngines
	}
	if d.HistoryScanEngines <= 0 {
		d.HistoryScanEngines = def.HistoryScanEngines
	}
	if d.DetectionCount <= 0 {
		d.DetectionCount = def.DetectionCount
	}
	if d.HistoryDetectionCount <= 0 {
		d.HistoryDetectionCount = def.HistoryDetectionCount
	}
	return d
}

// Normalizer maps raw service records to fully populated results.
// The zero value uses DefaultDisplayDefaults.
type Normalizer struct {
	display DisplayDefaults
}

// NewNormalizer creates a normalizer with the given placeholder counts.
func NewNormalizer(d DisplayDefaults) *Normalizer {
	return &Normalizer{display: d.withDefaults()}
}

// Display returns the placeholder counts in effect.
func (n *Normalizer) Display() DisplayDefaults {
	if n == nil {
		return DefaultDisplayDefaults()
	}
	return n.display.withDefaults()
}

// Email decodes an email record. The service returns complete email
// records, so absent fields keep their zero values.
func (n *Normalizer) Email(raw Raw, _ Source) EmailResult {
	d := raw.Object("details")
	return EmailResult{
		ID:            raw.String("id"),
		Subject:       raw.String("subject"),
		Sender:        raw.String("sender"),
		Timestamp:     raw.String("timestamp"),
		ThreatLevel:   raw.Level(),
		SpamScore:     raw.Int("spamScore"),
		PhishingScore: raw.Int("phishingScore"),
		Summary:       raw.String("summary"),
		Details: EmailDetails{
			SuspiciousLinks:  d.Int("suspiciousLinks"),
			Attachments:      d.Int("attachments"),
			SenderReputation: d.String("senderReputation"),
			DomainAge:        d.String("domainAge"),
		},
	}
}

// SMS normalizes an SMS record.
func (n *Normalizer) SMS(raw Raw, _ Source) SMSResult {
	level := raw.Level()

	message := raw.String("content")
	if message == "" {
		message = raw.String("message")
	}

	score := raw.Int("score")
	if !raw.Has("score") {
		score = raw.Int("spamScore")
	}

	category := raw.String("category")
	if category == "" {
		if level.IsSafe() {
			category = "Legitimate"
		} else {
			category = "Scam"
		}
	}

	return SMSResult{
		ID:          raw.String("id"),
		Message:     message,
		Sender:      raw.StringOr("sender", Unknown),
		Timestamp:   raw.String("timestamp"),
		ThreatLevel: level,
		SpamScore:   score,
		Keywords:    raw.Strings("keywords"),
		Category:    category,
	}
}

// Phone normalizes a phone-check record. Category, location and carrier
// are read from details first, then from the top level. The report count
// comes from details only.
func (n *Normalizer) Phone(raw Raw, _ Source) PhoneResult {
	d := raw.Object("details")
	return PhoneResult{
		ID:          raw.String("id"),
		PhoneNumber: raw.String("number"),
		Timestamp:   raw.String("timestamp"),
		RiskLevel:   raw.Level(),
		RiskScore:   raw.Int("score"),
		Reports:     d.Int("reports"),
		Category:    firstString(d, raw, "category", Unknown),
		Location:    firstString(d, raw, "location", Unknown),
		Carrier:     firstString(d, raw, "carrier", Unknown),
		Details: PhoneDetails{
			RecentReports:    d.Int("recentReports"),
			CommonComplaints: d.Strings("commonComplaints"),
			BlockedBy:        d.Int("blockedBy"),
		},
	}
}

// Web normalizes a URL-scan record. Breach data is taken from a top-level
// breachInfo object, falling back to details.breachInfo; records without
// one report zero breaches.
func (n *Normalizer) Web(raw Raw, _ Source) WebResult {
	level := raw.Level()
	d := raw.Object("details")
	b := raw.Object("breachInfo")
	if b == nil {
		b = d.Object("breachInfo")
	}
	breaches := b.Int("breachCount")

	ssl := d.String("sslStatus")
	if ssl == "" {
		ssl = d.StringOr("ssl", Unknown)
	}

	category, reputation := "Suspicious", "Bad"
	if level.IsSafe() {
		category, reputation = "Safe", "Good"
	}

	return WebResult{
		ID:          raw.String("id"),
		URL:         raw.String("url"),
		Timestamp:   raw.String("timestamp"),
		SafetyLevel: level,
		RiskScore:   raw.Int("score"),
		Category:    category,
		Details: WebDetails{
			DomainAge:       d.StringOr("domainAge", Unknown),
			SSLStatus:       ssl,
			Reputation:      reputation,
			MalwareDetected: level == LevelDangerous,
			BreachHistory:   d.Bool("breachHistory") || breaches > 0,
		},
		BreachInfo: BreachInfo{
			BreachCount:  breaches,
			LastBreach:   b.String("lastBreach"),
			AffectedData: b.Strings("affectedData"),
		},
	}
}

// File normalizes a file-scan record. Absent engine counts are filled from
// the display defaults for src.
func (n *Normalizer) File(raw Raw, src Source) FileResult {
	level := raw.Level()
	d := raw.Object("details")
	display := n.Display()

	engines := firstInt(d, raw, "scanEngines")
	if engines == 0 {
		engines = display.ScanEngines
		if src == SourceHistory {
			engines = display.HistoryScanEngines
		}
	}

	detections := firstInt(d, raw, "detectionCount")
	if detections == 0 && !level.IsSafe() {
		detections = display.DetectionCount
		if src == SourceHistory {
			detections = display.HistoryDetectionCount
		}
	}

	integrity := "Compromised"
	if level.IsSafe() {
		integrity = "Good"
	}

	threats := raw.Strings("threats")
	if len(threats) == 0 {
		if mt := d.String("malwareType"); mt != "" && mt != "None" {
			threats = []string{mt}
		}
	}

	return FileResult{
		ID:          raw.String("id"),
		FileName:    raw.String("filename"),
		FileSize:    raw.StringOr("size", Unknown),
		FileType:    raw.StringOr("type", Unknown),
		Timestamp:   raw.String("timestamp"),
		ThreatLevel: level,
		RiskScore:   raw.Int("score"),
		Details: FileDetails{
			VirusDetected:      level == LevelDangerous,
			SuspiciousActivity: level == LevelSuspicious,
			FileIntegrity:      integrity,
			ScanEngines:        engines,
			DetectionCount:     detections,
		},
		Threats: threats,
	}
}

func firstString(primary, fallback Raw, key, def string) string {
	if s := primary.String(key); s != "" {
		return s
	}
	return fallback.StringOr(key, def)
}

func firstInt(primary, fallback Raw, key string) int {
	if primary.Has(key) {
		return primary.Int(key)
	}
	return fallback.Int(key)
}
