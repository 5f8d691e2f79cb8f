package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/weatherchat/internal/agent"
)

var ErrMissingAPIKey = errors.New("model api key is required")

type Config struct {
	APIKey  string
	BaseURL string
}

// Client adapts the OpenAI chat completions API to agent.Model.
type Client struct {
	client openai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Failures surface to the user as is; the chat loop does not retry.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	return &Client{
		client: openai.NewClient(opts...),
		logger: logger.With("component", "llm"),
	}, nil
}

// Complete sends one chat completion request.
func (c *Client) Complete(ctx context.Context, req agent.Request) (*agent.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toMessages(req.System, req.Messages),
		Tools:    toTools(req.Tools),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, providerError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, &agent.ModelProviderError{Message: "response has no choices"}
	}

	choice := completion.Choices[0]
	c.logger.Debug("completion", "id", completion.ID, "finish_reason", choice.FinishReason,
		"prompt_tokens", completion.Usage.PromptTokens, "completion_tokens", completion.Usage.CompletionTokens)

	return &agent.Response{Content: fromMessage(choice.Message)}, nil
}

func toTools(specs []agent.ToolSpec) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        s.Name,
			Description: openai.String(s.Description),
			Parameters:  openai.FunctionParameters(s.InputSchema),
		}))
	}
	return tools
}

func toMessages(system string, msgs []agent.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, m := range msgs {
		switch m.Role {
		case agent.RoleUser:
			// Tool results become tool messages, which must follow the assistant turn directly.
			var text strings.Builder
			for _, b := range m.Content {
				switch b := b.(type) {
				case agent.ToolResultBlock:
					out = append(out, openai.ToolMessage(b.Content, b.ToolUseID))
				case agent.TextBlock:
					text.WriteString(b.Text)
				}
			}
			if text.Len() > 0 {
				out = append(out, openai.UserMessage(text.String()))
			}

		case agent.RoleAssistant:
			var (
				text  strings.Builder
				calls []openai.ChatCompletionMessageToolCallUnionParam
			)
			for _, b := range m.Content {
				switch b := b.(type) {
				case agent.TextBlock:
					text.WriteString(b.Text)
				case agent.ToolUseBlock:
					calls = append(calls, openai.ChatCompletionMessageToolCallUnionParam{
						OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
							ID: b.ID,
							Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
								Name:      b.Name,
								Arguments: string(b.Input),
							},
						},
					})
				}
			}
			if len(calls) == 0 {
				out = append(out, openai.AssistantMessage(text.String()))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text.Len() > 0 {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(text.String()),
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

func fromMessage(msg openai.ChatCompletionMessage) []agent.Block {
	var blocks []agent.Block
	if msg.Content != "" {
		blocks = append(blocks, agent.TextBlock{Text: msg.Content})
	}
	if msg.Refusal != "" {
		blocks = append(blocks, agent.TextBlock{Text: msg.Refusal})
	}
	for _, tc := range msg.ToolCalls {
		if tc.Type != "function" {
			blocks = append(blocks, agent.UnknownBlock{Type: "tool_call:" + tc.Type})
			continue
		}
		input := tc.Function.Arguments
		if strings.TrimSpace(input) == "" {
			input = "{}"
		}
		blocks = append(blocks, agent.ToolUseBlock{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: []byte(input),
		})
	}
	return blocks
}

func providerError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", apiErr.StatusCode)
		}
		return &agent.ModelProviderError{StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &agent.ModelProviderError{Message: err.Error(), Err: err}
}
