package scan

// ThreatLevel is the coarse risk classification reported by the service.
// It is an open set: values not listed here are carried through verbatim.
type ThreatLevel string

const (
	LevelSafe       ThreatLevel = "Safe"
	LevelSuspicious ThreatLevel = "Suspicious"
	LevelDangerous  ThreatLevel = "Dangerous"

	// LevelSpam is the SMS module's highest level.
	LevelSpam ThreatLevel = "Spam"

	// LevelMalicious is an older name for Dangerous still seen in file results.
	LevelMalicious ThreatLevel = "Malicious"
)

// IsSafe reports whether the level is exactly Safe.
func (l ThreatLevel) IsSafe() bool {
	return l == LevelSafe
}

func (l ThreatLevel) String() string {
	return string(l)
}
