// Package trust computes aggregate trust scores for endorsed content and maps
// them to rendering decisions.
package trust

import "maps"

// Verdict groups recognised by the default table.
const (
	MultiplierAgree   = 1.0
	MultiplierDispute = 0.3
	MultiplierFalse   = 0.1
	MultiplierNeutral = 0.7
)

// Scoring constants.
const (
	EndorsementShare   = 0.7
	CredibilityShare   = 0.3
	DefaultWeight      = 0.5
	DefaultConfidence  = 0.5
	DefaultCredibility = 0.5
	// FloorScore is returned for unendorsed content without credibility, and
	// used as the endorsement score when every weight is zero.
	FloorScore = 0.1
)

// Table is the injected scoring configuration.
type Table struct {
	// EndorserWeights maps endorser ids to the weight used when an
	// endorsement carries no trust_weight of its own.
	EndorserWeights map[string]float64
	// VerdictMultipliers maps verdict strings to confidence multipliers.
	VerdictMultipliers map[string]float64
	// DefaultMultiplier applies to verdicts missing from VerdictMultipliers.
	DefaultMultiplier float64
}

// DefaultTable returns a fresh copy of the built-in table.
func DefaultTable() Table {
	return Table{
		EndorserWeights: map[string]float64{
			"publisher:reuters":       0.95,
			"publisher:bbc":           0.92,
			"publisher:blog-example":  0.3,
			"endorser:openfactcheck":  0.88,
			"endorser:mediawatch":     0.75,
			"endorser:user-community": 0.45,
		},
		VerdictMultipliers: map[string]float64{
			"accurate":     MultiplierAgree,
			"verified":     MultiplierAgree,
			"corroborated": MultiplierAgree,
			"disputed":     MultiplierDispute,
			"questionable": MultiplierDispute,
			"false":        MultiplierFalse,
			"misleading":   MultiplierFalse,
		},
		DefaultMultiplier: MultiplierNeutral,
	}
}

// Merge returns t with the entries of o layered on top. A zero
// DefaultMultiplier in o keeps t's.
func (t Table) Merge(o Table) Table {
	out := Table{
		EndorserWeights:    maps.Clone(t.EndorserWeights),
		VerdictMultipliers: maps.Clone(t.VerdictMultipliers),
		DefaultMultiplier:  t.DefaultMultiplier,
	}
	if out.EndorserWeights == nil {
		out.EndorserWeights = make(map[string]float64)
	}
	if out.VerdictMultipliers == nil {
		out.VerdictMultipliers = make(map[string]float64)
	}
	maps.Copy(out.EndorserWeights, o.EndorserWeights)
	maps.Copy(out.VerdictMultipliers, o.VerdictMultipliers)
	if o.DefaultMultiplier != 0 {
		out.DefaultMultiplier = o.DefaultMultiplier
	}
	return out
}

// Multiplier returns the multiplier for a verdict.
func (t Table) Multiplier(verdict string) float64 {
	if m, ok := t.VerdictMultipliers[verdict]; ok {
		return m
	}
	return t.DefaultMultiplier
}
