package review

import "strings"

// ProblemSpec is the problem definition embedded into a review prompt.
type ProblemSpec struct {
	Title       string
	Description string
	TestCases   string
}

// BuildPrompt renders the review instruction sent to the AI reviewer. It is a
// pure function: identical inputs always produce an identical prompt.
func BuildPrompt(problem ProblemSpec, source, language string) string {
	builder := strings.Builder{}
	builder.WriteString("Review the following ")
	builder.WriteString(languageName(language))
	builder.WriteString(" code.\n\n")

	builder.WriteString("## Problem\n**")
	builder.WriteString(problem.Title)
	builder.WriteString("**\n")
	builder.WriteString(problem.Description)
	builder.WriteString("\n\n## Test Cases\n")
	builder.WriteString(problem.TestCases)

	builder.WriteString("\n\n## Submitted Code\n```")
	builder.WriteString(language)
	builder.WriteString("\n")
	builder.WriteString(source)
	builder.WriteString("\n```\n\n")

	builder.WriteString(`Return the review as a JSON object with exactly these fields:
{
  "overallScore": overall score 0-100,
  "feedback": "summary of the review",
  "issues": [{"type": "error|warning|info", "line": line number, "message": "description"}],
  "suggestions": ["improvement 1", "improvement 2"],
  "strengths": ["strength 1", "strength 2"],
  "capabilityScores": {
    "basicSyntax": 0-100,
    "memoryManagement": 0-100,
    "dataStructures": 0-100,
    "oop": 0-100,
    "stlLibrary": 0-100,
    "systemProgramming": 0-100
  }
}

Scoring dimensions:
- basicSyntax: correctness and cleanliness of basic syntax
- memoryManagement: allocation, deallocation and pointer usage
- dataStructures: choice and implementation of data structures and algorithms
- oop: object-oriented design (C++ only, use -1 for C submissions)
- stlLibrary: appropriate use of the standard library
- systemProgramming: error handling and resource management

Use -1 for any dimension that does not apply to this submission.
Return only the JSON object, nothing else.`)

	return builder.String()
}

func languageName(language string) string {
	if language == "cpp" {
		return "C++"
	}
	return "C"
}
