// Package threat maps scan threat levels to display styles and tallies
// results by level.
//
// Every level maps to a style: values the service may add later get the
// neutral style rather than an error.
package threat

import "github.com/cybershieldio/sdk/pkg/scan"

// Color is a palette name.
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
	Slate  Color = "slate"
)

// Icon is the badge glyph shown next to a level.
type Icon string

const (
	IconCheck Icon = "check"
	IconAlert Icon = "alert"
	IconClock Icon = "clock"
)

// Style is how a threat level is rendered.
type Style struct {
	Color Color  `json:"color"`
	Icon  Icon   `json:"icon"`
	Label string `json:"label"`
	// Fill is the chart colour for the level.
	Fill string `json:"fill"`
}

// Classes returns the badge CSS classes for the style.
func (s Style) Classes() string {
	c := string(s.Color)
	return "text-" + c + "-600 bg-" + c + "-50 border-" + c + "-200"
}

// StyleFor returns the style for level. It never fails.
func StyleFor(level scan.ThreatLevel) Style {
	label := string(level)
	if label == "" {
		label = "Unknown"
	}
	switch level {
	case scan.LevelSafe:
		return Style{Color: Green, Icon: IconCheck, Label: label, Fill: "#10b981"}
	case scan.LevelSuspicious:
		return Style{Color: Yellow, Icon: IconAlert, Label: label, Fill: "#f59e0b"}
	case scan.LevelDangerous, scan.LevelMalicious, scan.LevelSpam:
		return Style{Color: Red, Icon: IconAlert, Label: label, Fill: "#ef4444"}
	default:
		return Style{Color: Slate, Icon: IconClock, Label: label, Fill: "#64748b"}
	}
}

// IsThreat reports whether level counts toward the threat total. Only
// Dangerous and Suspicious do, matching the service's /api/stats; Spam and
// Malicious are tallied under ByLevel alone.
func IsThreat(level scan.ThreatLevel) bool {
	return level == scan.LevelDangerous || level == scan.LevelSuspicious
}

// Counts tallies results by threat level.
type Counts struct {
	Total   int                      `json:"total"`
	Threats int                      `json:"threats"`
	Safe    int                      `json:"safe"`
	ByLevel map[scan.ThreatLevel]int `json:"byLevel"`
}

// Count tallies the given results.
func Count[R scan.Result](results []R) Counts {
	c := Counts{ByLevel: make(map[scan.ThreatLevel]int)}
	for _, r := range results {
		level := r.Level()
		c.Total++
		c.ByLevel[level]++
		switch {
		case IsThreat(level):
			c.Threats++
		case level == scan.LevelSafe:
			c.Safe++
		}
	}
	return c
}
