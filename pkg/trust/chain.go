package trust

import (
	"fmt"

	"github.com/Mindburn-Labs/spp/pkg/document"
)

// ChainResult is the outcome of ValidateChain.
type ChainResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateChain checks the semantic integrity of an endorsement list.
// It does not depend on schema validation and accepts any document.
// Indexes in messages are 0-based.
func ValidateChain(endorsements []document.Endorsement) ChainResult {
	issues := []string{}
	for i, e := range endorsements {
		if e.Endorser.ID == "" {
			issues = append(issues, fmt.Sprintf("Endorsement %d: Missing endorser ID", i))
		}
		if e.Verdict == "" {
			issues = append(issues, fmt.Sprintf("Endorsement %d: Missing verdict", i))
		}
		if !e.Confidence.InUnit() {
			issues = append(issues, fmt.Sprintf("Endorsement %d: Invalid confidence value", i))
		}
		if e.TrustWeight.Present && !e.TrustWeight.InUnit() {
			issues = append(issues, fmt.Sprintf("Endorsement %d: Invalid trust weight", i))
		}
	}
	return ChainResult{Valid: len(issues) == 0, Issues: issues}
}
