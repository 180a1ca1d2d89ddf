package scan

// Result is implemented by every module's normalized record.
type Result interface {
	// ResultID returns the identifier assigned by the service.
	ResultID() string
	// Level returns the record's threat classification.
	Level() ThreatLevel
	// Label returns the scanned item as shown in listings.
	Label() string
	// Score returns the record's headline risk percentage.
	Score() int
}

// EmailResult is the outcome of an email scan.
type EmailResult struct {
	ID            string       `json:"id"`
	Subject       string       `json:"subject"`
	Sender        string       `json:"sender"`
	Timestamp     string       `json:"timestamp"`
	ThreatLevel   ThreatLevel  `json:"threatLevel"`
	SpamScore     int          `json:"spamScore"`
	PhishingScore int          `json:"phishingScore"`
	Summary       string       `json:"summary"`
	Details       EmailDetails `json:"details"`
}

// EmailDetails holds secondary email attributes.
type EmailDetails struct {
	SuspiciousLinks  int    `json:"suspiciousLinks"`
	Attachments      int    `json:"attachments"`
	SenderReputation string `json:"senderReputation"`
	DomainAge        string `json:"domainAge"`
}

// SMSResult is the outcome of an SMS scan.
type SMSResult struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	Sender      string      `json:"sender"`
	Timestamp   string      `json:"timestamp"`
	ThreatLevel ThreatLevel `json:"threatLevel"`
	SpamScore   int         `json:"spamScore"`
	Keywords    []string    `json:"keywords"`
	Category    string      `json:"category"`
}

// PhoneResult is the outcome of a phone-number check.
type PhoneResult struct {
	ID          string       `json:"id"`
	PhoneNumber string       `json:"phoneNumber"`
	Timestamp   string       `json:"timestamp"`
	RiskLevel   ThreatLevel  `json:"riskLevel"`
	RiskScore   int          `json:"riskScore"`
	Reports     int          `json:"reports"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	Carrier     string       `json:"carrier"`
	Details     PhoneDetails `json:"details"`
}

// PhoneDetails holds community report data for a number.
type PhoneDetails struct {
	RecentReports    int      `json:"recentReports"`
	CommonComplaints []string `json:"commonComplaints"`
	BlockedBy        int      `json:"blockedBy"`
}

// WebResult is the outcome of a URL scan.
type WebResult struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Timestamp   string      `json:"timestamp"`
	SafetyLevel ThreatLevel `json:"safetyLevel"`
	RiskScore   int         `json:"riskScore"`
	Category    string      `json:"category"`
	Details     WebDetails  `json:"details"`
	BreachInfo  BreachInfo  `json:"breachInfo"`
}

// WebDetails holds secondary URL attributes.
type WebDetails struct {
	DomainAge       string `json:"domainAge"`
	SSLStatus       string `json:"sslStatus"`
	Reputation      string `json:"reputation"`
	Redirects       int    `json:"redirects"`
	BreachHistory   bool   `json:"breachHistory"`
	MalwareDetected bool   `json:"malwareDetected"`
}

// BreachInfo summarizes known data breaches for a site.
type BreachInfo struct {
	BreachCount  int      `json:"breachCount"`
	LastBreach   string   `json:"lastBreach"`
	AffectedData []string `json:"affectedData"`
}

// FileResult is the outcome of a file scan.
type FileResult struct {
	ID          string      `json:"id"`
	FileName    string      `json:"fileName"`
	FileSize    string      `json:"fileSize"`
	FileType    string      `json:"fileType"`
	Timestamp   string      `json:"timestamp"`
	ThreatLevel ThreatLevel `json:"threatLevel"`
	RiskScore   int         `json:"riskScore"`
	Details     FileDetails `json:"details"`
	Threats     []string    `json:"threats"`
}

// FileDetails holds engine verdicts for a file.
type FileDetails struct {
	VirusDetected      bool   `json:"virusDetected"`
	SuspiciousActivity bool   `json:"suspiciousActivity"`
	FileIntegrity      string `json:"fileIntegrity"`
	ScanEngines        int    `json:"scanEngines"`
	DetectionCount     int    `json:"detectionCount"`
}

func (r EmailResult) ResultID() string   { return r.ID }
func (r EmailResult) Level() ThreatLevel { return r.ThreatLevel }
func (r EmailResult) Label() string      { return r.Subject }
func (r EmailResult) Score() int         { return r.PhishingScore }

func (r SMSResult) ResultID() string   { return r.ID }
func (r SMSResult) Level() ThreatLevel { return r.ThreatLevel }
func (r SMSResult) Label() string      { return r.Sender }
func (r SMSResult) Score() int         { return r.SpamScore }

func (r PhoneResult) ResultID() string   { return r.ID }
func (r PhoneResult) Level() ThreatLevel { return r.RiskLevel }
func (r PhoneResult) Label() string      { return r.PhoneNumber }
func (r PhoneResult) Score() int         { return r.RiskScore }

func (r WebResult) ResultID() string   { return r.ID }
func (r WebResult) Level() ThreatLevel { return r.SafetyLevel }
func (r WebResult) Label() string      { return r.URL }
func (r WebResult) Score() int         { return r.RiskScore }

func (r FileResult) ResultID() string   { return r.ID }
func (r FileResult) Level() ThreatLevel { return r.ThreatLevel }
func (r FileResult) Label() string      { return r.FileName }
func (r FileResult) Score() int         { return r.RiskScore }

var (
	_ Result = EmailResult{}
	_ Result = SMSResult{}
	_ Result = PhoneResult{}
	_ Result = WebResult{}
	_ Result = FileResult{}
)
