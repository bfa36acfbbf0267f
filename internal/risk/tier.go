// Package risk turns a classifier output into something a loan officer can
// read: a coarse risk tier, a ranked explanation of the features that moved
// the score, and the per-submission pipeline that ties them together.
package risk

import "fmt"

// Tier thresholds on the default probability.
const (
	MediumThreshold = 0.30
	HighThreshold   = 0.70
)

// Tier is the three-level bucketing of a default probability.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

// Severity selects the alert style a tier is rendered with.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// TierFor buckets p: below 0.30 is Low, below 0.70 is Medium, everything
// else is High.
func TierFor(p float64) Tier {
	switch {
	case p < MediumThreshold:
		return Low
	case p < HighThreshold:
		return Medium
	default:
		return High
	}
}

func (t Tier) String() string {
	switch t {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Message is the decision text shown next to the probability.
func (t Tier) Message() string {
	switch t {
	case Low:
		return "Low risk: credit can be granted."
	case Medium:
		return "Medium risk: careful evaluation required."
	default:
		return "High risk: probability of default is high."
	}
}

func (t Tier) Severity() Severity {
	switch t {
	case Low:
		return SeveritySuccess
	case Medium:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// MarshalText encodes the tier by name so JSON responses read "Medium"
// rather than 1.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Low":
		*t = Low
	case "Medium":
		*t = Medium
	case "High":
		*t = High
	default:
		return fmt.Errorf("unknown risk tier %q", text)
	}
	return nil
}
