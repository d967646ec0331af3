package coze

import "fmt"

// SubmissionError reports a chat submission that never became a remote job,
// either because the transport failed or because the response envelope carried
// a non-zero application code.
type SubmissionError struct {
	Code int
	Msg  string
	Err  error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coze chat submission failed: %v", e.Err)
	}
	return fmt.Sprintf("coze chat submission rejected: code=%d msg=%s", e.Code, e.Msg)
}

// Unwrap exposes the underlying transport error, if any.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// JobFailedError reports a chat the remote service explicitly marked failed.
type JobFailedError struct {
	ChatID         string
	ConversationID string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("coze chat %s failed remotely", e.ChatID)
}
