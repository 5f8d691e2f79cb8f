package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lox/weatherchat/internal/metrics"
	"github.com/lox/weatherchat/internal/models"
	"github.com/lox/weatherchat/internal/weather"
)

const (
	DefaultMaxTokens    = 1024
	DefaultMaxToolCalls = 8
)

// Forecaster is the weather lookup behind the get_weather tool.
type Forecaster interface {
	GetWeather(ctx context.Context, location string) (models.Forecast, error)
}

type Config struct {
	Model        string
	MaxTokens    int64
	MaxToolCalls int
}

// Agent runs the model until it produces a textual answer, executing weather
// lookups the model asks for along the way.
type Agent struct {
	config  Config
	model   Model
	weather Forecaster
	logger  *slog.Logger

	// Optional hooks, nil means no output.

	// OnToolCall is called before a tool executes with the raw tool input.
	OnToolCall func(name string, input json.RawMessage)

	// OnToolDone is called after a tool executes successfully.
	OnToolDone func(name string, result models.Forecast)
}

func New(config Config, model Model, forecaster Forecaster, logger *slog.Logger) *Agent {
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.MaxToolCalls <= 0 {
		config.MaxToolCalls = DefaultMaxToolCalls
	}
	return &Agent{
		config:  config,
		model:   model,
		weather: forecaster,
		logger:  logger.With("component", "agent"),
	}
}

// Tools returns the tool declarations sent with every model call.
func Tools() []ToolSpec {
	return []ToolSpec{{
		Name:        weather.ToolName,
		Description: weather.ToolDescription,
		InputSchema: weather.InputSchema(),
	}}
}

// Run calls the model until it answers without a tool request and returns the answer.
// Each executed tool call appends an assistant tool-use turn and a user tool-result
// turn to conv. The final answer is not appended. On error no turn is appended for
// the failing step.
func (a *Agent) Run(ctx context.Context, conv *Conversation) (string, error) {
	toolCalls := 0
	for {
		if err := a.checkReady(conv); err != nil {
			return "", err
		}

		a.logger.Debug("model call", "messages", len(conv.Messages), "history", history(conv.Messages))
		resp, err := a.model.Complete(ctx, Request{
			Model:     a.config.Model,
			MaxTokens: a.config.MaxTokens,
			Tools:     Tools(),
			System:    conv.SystemPrompt,
			Messages:  conv.Messages,
		})
		if err != nil {
			metrics.ModelCallsTotal.WithLabelValues("error").Inc()
			return "", err
		}
		metrics.ModelCallsTotal.WithLabelValues("ok").Inc()

		text, use, found := a.inspect(resp)
		if !found {
			return text, nil
		}

		if toolCalls >= a.config.MaxToolCalls {
			return "", fmt.Errorf("%w: limit %d", ErrMaxToolCallsExceeded, a.config.MaxToolCalls)
		}
		toolCalls++

		result, err := a.execute(ctx, use)
		if err != nil {
			return "", err
		}

		// Text the model wrote alongside the request stays with the request.
		assistant := Message{Role: RoleAssistant}
		if text != "" {
			assistant.Content = append(assistant.Content, TextBlock{Text: text})
		}
		assistant.Content = append(assistant.Content, use)

		conv.Append(assistant, Message{
			Role: RoleUser,
			Content: []Block{ToolResultBlock{
				ToolUseID: use.ID,
				Content:   result,
				IsError:   false,
			}},
		})
	}
}

func (a *Agent) checkReady(conv *Conversation) error {
	if err := conv.Validate(); err != nil {
		return err
	}
	if len(conv.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidHistory)
	}
	if last := conv.Messages[len(conv.Messages)-1]; last.Role != RoleUser {
		return fmt.Errorf("%w: last message is from %s", ErrInvalidHistory, last.Role)
	}
	return nil
}

// inspect splits a response into its concatenated text and the first tool request.
func (a *Agent) inspect(resp *Response) (string, ToolUseBlock, bool) {
	var (
		text  strings.Builder
		use   ToolUseBlock
		found bool
	)
	for _, block := range resp.Content {
		switch b := block.(type) {
		case TextBlock:
			text.WriteString(b.Text)
		case ToolUseBlock:
			if found {
				a.logger.Warn("dropping additional tool request", "tool", b.Name, "id", b.ID)
				continue
			}
			use, found = b, true
		default:
			a.logger.Warn("unexpected content block", "type", block.blockType())
		}
	}
	a.logger.Debug("model response", "text", text.String(), "tool_request", found)
	return text.String(), use, found
}

// execute runs the requested tool and returns its serialized result.
func (a *Agent) execute(ctx context.Context, use ToolUseBlock) (string, error) {
	if use.Name != weather.ToolName {
		metrics.ToolCallsTotal.WithLabelValues("unknown", "error").Inc()
		return "", &UnknownToolError{Name: use.Name}
	}

	location, err := locationInput(use.Input)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(use.Name, "invalid_input").Inc()
		return "", err
	}

	a.logger.Debug("tool call", "tool", use.Name, "location", location)
	if a.OnToolCall != nil {
		a.OnToolCall(use.Name, use.Input)
	}

	fc, err := a.weather.GetWeather(ctx, location)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(use.Name, "error").Inc()
		return "", err
	}
	metrics.ToolCallsTotal.WithLabelValues(use.Name, "ok").Inc()

	if a.OnToolDone != nil {
		a.OnToolDone(use.Name, fc)
	}

	b, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("encode forecast: %w", err)
	}
	a.logger.Debug("tool result", "tool", use.Name, "days", len(fc.Daily), "bytes", len(b))
	return string(b), nil
}

func locationInput(raw json.RawMessage) (string, error) {
	var input map[string]json.RawMessage
	if err := json.Unmarshal(raw, &input); err != nil || input == nil {
		return "", &ToolInputError{Tool: weather.ToolName, Reason: "input must be a JSON object"}
	}
	value, ok := input[weather.LocationField]
	if !ok {
		return "", &ToolInputError{Tool: weather.ToolName, Field: weather.LocationField, Reason: "missing"}
	}
	var location string
	if err := json.Unmarshal(value, &location); err != nil {
		return "", &ToolInputError{Tool: weather.ToolName, Field: weather.LocationField, Reason: "must be a string"}
	}
	if strings.TrimSpace(location) == "" {
		return "", &ToolInputError{Tool: weather.ToolName, Field: weather.LocationField, Reason: "must not be blank"}
	}
	return location, nil
}

// history renders messages compactly for debug logs, only when the record is emitted.
type history []Message

func (h history) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(h))
	for i, m := range h {
		kinds := make([]string, 0, len(m.Content))
		for _, b := range m.Content {
			kinds = append(kinds, b.blockType())
		}
		attrs = append(attrs, slog.String(fmt.Sprint(i), string(m.Role)+":"+strings.Join(kinds, ",")))
	}
	return slog.GroupValue(attrs...)
}
