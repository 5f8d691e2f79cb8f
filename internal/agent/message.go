package agent

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Block is one piece of message content. The set of variants is closed.
type Block interface {
	blockType() string
}

type TextBlock struct {
	Text string
}

// ToolUseBlock is a model request to run a tool. ID correlates it with the result.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// UnknownBlock stands in for provider content we do not model.
type UnknownBlock struct {
	Type string
}

func (TextBlock) blockType() string       { return "text" }
func (ToolUseBlock) blockType() string    { return "tool_use" }
func (ToolResultBlock) blockType() string { return "tool_result" }
func (b UnknownBlock) blockType() string  { return b.Type }

type Message struct {
	Role    Role
	Content []Block
}

func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []Block{TextBlock{Text: text}}}
}

func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: []Block{TextBlock{Text: text}}}
}

// Text concatenates the message's text blocks in order.
func (m Message) Text() string {
	var s string
	for _, b := range m.Content {
		if t, ok := b.(TextBlock); ok {
			s += t.Text
		}
	}
	return s
}

func (m Message) toolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range m.Content {
		if u, ok := b.(ToolUseBlock); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

func (m Message) toolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range m.Content {
		if r, ok := b.(ToolResultBlock); ok {
			results = append(results, r)
		}
	}
	return results
}

var ErrInvalidHistory = errors.New("invalid conversation history")

// Conversation is the system prompt plus the ordered message history of one session.
type Conversation struct {
	SystemPrompt string
	Messages     []Message
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{SystemPrompt: systemPrompt}
}

func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
}

func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Truncate drops every message after the first n.
func (c *Conversation) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(c.Messages) {
		clear(c.Messages[n:])
		c.Messages = c.Messages[:n]
	}
}

// Validate checks that every assistant tool request is immediately followed by a user
// turn answering exactly those requests, and that no tool result appears anywhere else.
func (c *Conversation) Validate() error {
	for i, m := range c.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("%w: message %d: unknown role %q", ErrInvalidHistory, i, m.Role)
		}

		results := m.toolResults()
		if len(results) > 0 {
			if m.Role != RoleUser {
				return fmt.Errorf("%w: message %d: tool result in %s turn", ErrInvalidHistory, i, m.Role)
			}
			if i == 0 || len(c.Messages[i-1].toolUses()) == 0 {
				return fmt.Errorf("%w: message %d: tool result without a preceding tool request", ErrInvalidHistory, i)
			}
		}

		uses := m.toolUses()
		if len(uses) == 0 {
			continue
		}
		if m.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d: tool request in %s turn", ErrInvalidHistory, i, m.Role)
		}
		if i+1 >= len(c.Messages) {
			return fmt.Errorf("%w: message %d: tool request %s has no result", ErrInvalidHistory, i, uses[0].ID)
		}
		answered := make(map[string]bool)
		for _, r := range c.Messages[i+1].toolResults() {
			answered[r.ToolUseID] = true
		}
		for _, u := range uses {
			if !answered[u.ID] {
				return fmt.Errorf("%w: message %d: tool request %s has no result", ErrInvalidHistory, i, u.ID)
			}
			delete(answered, u.ID)
		}
		for id := range answered {
			return fmt.Errorf("%w: message %d: tool result %s answers no request", ErrInvalidHistory, i+1, id)
		}
	}
	return nil
}
