package service

import "errors"

// AI failure classification. Extraction-side failures are swallowed by the
// turn orchestrator (the turn continues with no new fields); generation-side
// and auth failures surface to the caller.
var (
	// ErrAIUnavailable: transient service failure that survived all retries.
	ErrAIUnavailable = errors.New("ai service unavailable")

	// ErrAITimeout: the call exceeded its deadline after retries. Kept
	// distinct so callers can show "AI is slow, try again" instead of a
	// generic error.
	ErrAITimeout = errors.New("ai service timed out")

	// ErrAIAuth: missing or rejected credentials, or a malformed request.
	// Never retried; operators should fix configuration, not retry.
	ErrAIAuth = errors.New("ai service authentication or configuration error")

	// ErrGenerationFailed: the final response text could not be produced.
	// The schema update from the same turn is still valid and is persisted.
	ErrGenerationFailed = errors.New("response generation failed")
)

// IsRetryableStatus reports whether an HTTP status from the AI transport
// warrants another attempt. Auth and malformed-request errors are final.
func IsRetryableStatus(status int) bool {
	if status == 429 {
		return true
	}
	return status >= 500
}
