package agent

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrMaxToolCallsExceeded = errors.New("too many tool calls in one turn")

// UnknownToolError means the model asked for a tool this agent does not provide.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool call error: unknown tool %q", e.Name)
}

// ToolInputError means the tool input did not match the declared schema.
type ToolInputError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ToolInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: invalid input: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: invalid input %q: %s", e.Tool, e.Field, e.Reason)
}

// ModelProviderError is a failure reported by the model provider.
// StatusCode is zero when no HTTP response was received.
type ModelProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ModelProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("model provider: %s", e.Message)
	}
	return fmt.Sprintf("model provider: %d: %s", e.StatusCode, e.Message)
}

func (e *ModelProviderError) Unwrap() error { return e.Err }

func (e *ModelProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func (e *ModelProviderError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
