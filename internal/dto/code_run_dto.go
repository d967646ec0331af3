package dto

// CodeRunRequest executes code without submitting it for review.
type CodeRunRequest struct {
	Language string `json:"language" validate:"required,oneof=c cpp"`
	Source   string `json:"source" validate:"required,min=1"`
	Stdin    string `json:"stdin"`
}

// CodeRunResponse reports the sandboxed execution outcome.
type CodeRunResponse struct {
	Phase           string `json:"phase,omitempty"`
	Output          string `json:"output"`
	Error           string `json:"error,omitempty"`
	ExitCode        int    `json:"exit_code"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	MemoryUsedKB    int64  `json:"memory_used_kb"`
	TimedOut        bool   `json:"timed_out"`
}
