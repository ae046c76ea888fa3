package trust

import (
	"github.com/Mindburn-Labs/spp/pkg/document"
)

// WeightSource records where an endorsement's weight came from.
type WeightSource string

const (
	WeightFromEndorsement WeightSource = "endorsement"
	WeightFromTable       WeightSource = "table"
	WeightFromDefault     WeightSource = "default"
)

// Contribution is one endorsement's share of the score.
type Contribution struct {
	Index        int          `json:"index"`
	EndorserID   string       `json:"endorser_id,omitempty"`
	EndorserName string       `json:"endorser_name,omitempty"`
	Verdict      string       `json:"verdict,omitempty"`
	Weight       float64      `json:"weight"`
	WeightSource WeightSource `json:"weight_source"`
	Confidence   float64      `json:"confidence"`
	Multiplier   float64      `json:"multiplier"`
	Adjusted     float64      `json:"adjusted"`
}

// Breakdown explains how a score was reached.
type Breakdown struct {
	Contributions     []Contribution `json:"contributions"`
	TotalWeight       float64        `json:"total_weight"`
	EndorsementScore  float64        `json:"endorsement_score"`
	SourceCredibility float64        `json:"source_credibility"`
	// CredibilityDefaulted is set when the document carried no usable
	// source_credibility signal.
	CredibilityDefaulted bool    `json:"credibility_defaulted"`
	Score                float64 `json:"score"`
}

// Scorer computes trust scores against a table.
type Scorer struct {
	table Table
}

// NewScorer returns a scorer over table.
func NewScorer(table Table) *Scorer {
	return &Scorer{table: table}
}

// Table returns the scorer's configuration.
func (s *Scorer) Table() Table { return s.table }

// Score returns the aggregate trust score of doc.
func (s *Scorer) Score(doc *document.Document) float64 {
	return s.Explain(doc).Score
}

// Explain computes the score and records every intermediate value.
//
// Unendorsed content scores its source_credibility, or FloorScore without
// one. Otherwise the weighted mean of verdict-adjusted confidences is blended
// with source credibility. Inputs outside [0,1] count as absent and take the
// table or default value instead.
func (s *Scorer) Explain(doc *document.Document) Breakdown {
	signals := doc.TrustSignals()
	endorsements := doc.Endorsements()

	b := Breakdown{SourceCredibility: DefaultCredibility, CredibilityDefaulted: true}
	if c := signals.SourceCredibility; c != nil && *c >= 0 && *c <= 1 {
		b.SourceCredibility = *signals.SourceCredibility
		b.CredibilityDefaulted = false
	}

	if len(endorsements) == 0 {
		b.Score = FloorScore
		if !b.CredibilityDefaulted {
			b.Score = b.SourceCredibility
		}
		return b
	}

	var weighted float64
	b.Contributions = make([]Contribution, 0, len(endorsements))
	for i, e := range endorsements {
		c := Contribution{
			Index:        i,
			EndorserID:   e.Endorser.ID,
			EndorserName: e.Endorser.Name,
			Verdict:      e.Verdict,
			Confidence:   unit(e.Confidence, DefaultConfidence),
			Multiplier:   s.table.Multiplier(e.Verdict),
		}
		c.Weight, c.WeightSource = s.weight(e)
		c.Adjusted = c.Confidence * c.Multiplier

		weighted += c.Weight * c.Adjusted
		b.TotalWeight += c.Weight
		b.Contributions = append(b.Contributions, c)
	}

	b.EndorsementScore = FloorScore
	if b.TotalWeight > 0 {
		b.EndorsementScore = weighted / b.TotalWeight
	}
	b.Score = b.EndorsementScore*EndorsementShare + b.SourceCredibility*CredibilityShare
	return b
}

func (s *Scorer) weight(e document.Endorsement) (float64, WeightSource) {
	if e.TrustWeight.InUnit() {
		return e.TrustWeight.Value, WeightFromEndorsement
	}
	if w, ok := s.table.EndorserWeights[e.Endorser.ID]; ok && e.Endorser.ID != "" {
		return w, WeightFromTable
	}
	return DefaultWeight, WeightFromDefault
}

func unit(m document.Measure, def float64) float64 {
	if m.InUnit() {
		return m.Value
	}
	return def
}
