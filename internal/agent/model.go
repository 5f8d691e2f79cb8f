package agent

import "context"

// ToolSpec declares a tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

type Request struct {
	Model     string
	MaxTokens int64
	Tools     []ToolSpec
	System    string
	Messages  []Message
}

type Response struct {
	Content []Block
}

// Model is a chat completion backend. Failures should be *ModelProviderError
// when the provider answered with an error status.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
