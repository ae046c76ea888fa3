package trust

// Action is the rendering decision for scored content.
type Action string

const (
	ActionHighlight          Action = "highlight"
	ActionDisplay            Action = "display"
	ActionDisplayWithWarning Action = "display_with_warning"
	ActionSuppress           Action = "suppress"
)

// Band thresholds, inclusive on the lower bound.
const (
	HighlightThreshold = 0.8
	DisplayThreshold   = 0.6
	WarningThreshold   = 0.3
)

// Decision is what a consumer should do with content of a given score.
type Decision struct {
	Action   Action `json:"action"`
	Reason   string `json:"reason"`
	Styling  string `json:"styling"`
	Priority string `json:"priority"`
	Warning  string `json:"warning,omitempty"`
}

// Decide maps a score to a rendering decision.
func Decide(score float64) Decision {
	switch {
	case score >= HighlightThreshold:
		return Decision{
			Action:   ActionHighlight,
			Reason:   "High trust content - prominently display",
			Styling:  "featured",
			Priority: "high",
		}
	case score >= DisplayThreshold:
		return Decision{
			Action:   ActionDisplay,
			Reason:   "Trusted content - normal display",
			Styling:  "normal",
			Priority: "medium",
		}
	case score >= WarningThreshold:
		return Decision{
			Action:   ActionDisplayWithWarning,
			Reason:   "Mixed trust signals - show with caution",
			Styling:  "warning",
			Priority: "low",
			Warning:  "This content has mixed trust signals. Verify before sharing.",
		}
	default:
		return Decision{
			Action:   ActionSuppress,
			Reason:   "Low trust content - minimize or hide",
			Styling:  "suppressed",
			Priority: "none",
			Warning:  "This content has low trust signals and may be unreliable.",
		}
	}
}

// Band returns the trust label for a score.
func Band(score float64) string {
	switch {
	case score >= HighlightThreshold:
		return "HIGH"
	case score >= DisplayThreshold:
		return "MEDIUM"
	case score >= WarningThreshold:
		return "LOW"
	default:
		return "VERY LOW"
	}
}
