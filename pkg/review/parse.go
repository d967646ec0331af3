package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedReview indicates the answer text was not a valid structured
// review. It is never retried; the caller decides how to surface it.
var ErrMalformedReview = errors.New("malformed review answer")

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
)

// answerSchema validates the loosely-typed remote payload before it is
// converted to the strict internal record. overallScore is mandatory; a
// capabilityScores object must carry all six dimensions or none at all.
const answerSchema = `{
  "type": "object",
  "required": ["overallScore"],
  "properties": {
    "overallScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "feedback": {"type": "string"},
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "line", "message"],
        "properties": {
          "type": {"enum": ["error", "warning", "info"]},
          "line": {"type": "integer", "minimum": 1},
          "message": {"type": "string"}
        }
      }
    },
    "suggestions": {"type": "array", "items": {"type": "string"}},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "capabilityScores": {
      "type": "object",
      "required": ["basicSyntax", "memoryManagement", "dataStructures", "oop", "stlLibrary", "systemProgramming"],
      "properties": {
        "basicSyntax": {"type": "integer", "minimum": -1, "maximum": 100},
        "memoryManagement": {"type": "integer", "minimum": -1, "maximum": 100},
        "dataStructures": {"type": "integer", "minimum": -1, "maximum": 100},
        "oop": {"type": "integer", "minimum": -1, "maximum": 100},
        "stlLibrary": {"type": "integer", "minimum": -1, "maximum": 100},
        "systemProgramming": {"type": "integer", "minimum": -1, "maximum": 100}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("review.schema.json", answerSchema)

// Parse converts an answer text into a structured review. The answer may be
// wrapped in a markdown code fence; both fenced and bare JSON parse
// identically. Failures wrap ErrMalformedReview.
func Parse(answer string) (Review, error) {
	cleaned := stripFences(answer)
	if cleaned == "" {
		return Review{}, fmt.Errorf("%w: empty answer", ErrMalformedReview)
	}

	var loose interface{}
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return Review{}, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}

	if err := compiledSchema.Validate(loose); err != nil {
		return Review{}, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}

	var result Review
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return Review{}, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}

	return result, nil
}

func stripFences(answer string) string {
	cleaned := strings.TrimSpace(answer)
	cleaned = fenceOpen.ReplaceAllString(cleaned, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
