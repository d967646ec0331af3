package review

import (
	"encoding/json"
	"fmt"
)

// PassingScore is the overall score at or above which a submission passes.
const PassingScore = 60

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// notApplicableScore is the wire convention for a capability dimension that
// does not apply to the submission, e.g. the OOP score for C code.
const notApplicableScore = -1

// Issue points at a specific problem found in the submitted code.
type Issue struct {
	Type    string `json:"type"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// DimensionScore is one capability dimension observation. The -1 wire sentinel
// is translated to Applicable=false at the JSON boundary so it never leaks
// into arithmetic.
type DimensionScore struct {
	Score      int
	Applicable bool
}

// MarshalJSON renders the score using the -1 wire convention.
func (d DimensionScore) MarshalJSON() ([]byte, error) {
	if !d.Applicable {
		return json.Marshal(notApplicableScore)
	}
	return json.Marshal(d.Score)
}

// UnmarshalJSON reads an integer score, mapping -1 to "not applicable".
func (d *DimensionScore) UnmarshalJSON(data []byte) error {
	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	if value == notApplicableScore {
		*d = DimensionScore{}
		return nil
	}

	if value < 0 || value > 100 {
		return fmt.Errorf("dimension score %d out of range", value)
	}

	*d = DimensionScore{Score: value, Applicable: true}
	return nil
}

// CapabilityDelta carries the six per-dimension sub-scores of one review.
// Either all six dimensions are present or the delta is absent entirely.
type CapabilityDelta struct {
	BasicSyntax       DimensionScore `json:"basicSyntax"`
	MemoryManagement  DimensionScore `json:"memoryManagement"`
	DataStructures    DimensionScore `json:"dataStructures"`
	OOP               DimensionScore `json:"oop"`
	STLLibrary        DimensionScore `json:"stlLibrary"`
	SystemProgramming DimensionScore `json:"systemProgramming"`
}

// Review is the structured evaluation of a code submission.
type Review struct {
	OverallScore int              `json:"overallScore"`
	Feedback     string           `json:"feedback"`
	Issues       []Issue          `json:"issues"`
	Suggestions  []string         `json:"suggestions"`
	Strengths    []string         `json:"strengths"`
	Capabilities *CapabilityDelta `json:"capabilityScores,omitempty"`
}

// Passed reports whether the overall score clears the passing threshold.
func (r Review) Passed() bool {
	return r.OverallScore >= PassingScore
}
