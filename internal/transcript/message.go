// Package transcript defines the canonical message shapes shared by the
// normalization engine. Messages form a tagged union over Role: only
// assistant and toolResult messages carry structure the engine cares about,
// every other role is opaque and passes through untouched.
package transcript

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "toolResult"
	RoleSystem     Role = "system"
)

// Stop reasons with protocol meaning. Any other value is carried verbatim.
const (
	StopError   = "error"
	StopAborted = "aborted"
)

// BlockType identifies the kind of content block inside an assistant message.
type BlockType string

const (
	BlockText BlockType = "text"

	// Tool-call variants. Providers spell this differently; all three are
	// treated identically by the engine.
	BlockToolCall     BlockType = "toolCall"
	BlockToolUse      BlockType = "toolUse"
	BlockFunctionCall BlockType = "functionCall"
)

// ContentBlock is one element of an assistant message's content, either
// prose or a tool call.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// Text is set for BlockText.
	Text string `json:"text,omitempty"`

	// The remaining fields are set for tool-call variants. Input is the
	// preferred spelling of the call payload; Arguments is accepted as an
	// alternative on ingest.
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// IsToolCall reports whether the block is any of the tool-call variants.
func (b ContentBlock) IsToolCall() bool {
	switch b.Type {
	case BlockToolCall, BlockToolUse, BlockFunctionCall:
		return true
	case BlockText:
		return false
	}
	return false
}

// Args returns the call payload, preferring Input over Arguments.
func (b ContentBlock) Args() json.RawMessage {
	if jsonPresent(b.Input) {
		return b.Input
	}
	return b.Arguments
}

// WellFormed reports whether a tool-call block carries everything a
// provider requires: a non-empty id, a non-empty name, and a non-null
// payload in at least one of Input/Arguments.
func (b ContentBlock) WellFormed() bool {
	if !b.IsToolCall() {
		return false
	}
	if b.ID == "" || b.Name == "" {
		return false
	}
	return jsonPresent(b.Input) || jsonPresent(b.Arguments)
}

// jsonPresent reports whether a raw value is present and not JSON null.
func jsonPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Message is the tagged union over Role.
//
// Assistant messages use Content and StopReason. ToolResult messages use
// ToolCallID (or the legacy ToolUseID alias), ToolName, Content, IsError,
// and Timestamp. User and system messages keep whatever content they came
// with and are never inspected.
type Message struct {
	Role       Role           `json:"role"`
	Content    []ContentBlock `json:"content,omitempty"`
	StopReason string         `json:"stopReason,omitempty"`

	// Tool-result reference fields. ToolCallID is preferred; ToolUseID is
	// a legacy alias checked only when ToolCallID is absent.
	ToolCallID string    `json:"toolCallId,omitempty"`
	ToolUseID  string    `json:"toolUseId,omitempty"`
	ToolName   string    `json:"toolName,omitempty"`
	IsError    bool      `json:"isError,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

// ResultID returns the tool-call reference a toolResult message carries,
// preferring ToolCallID over the legacy ToolUseID.
func (m Message) ResultID() string {
	if m.ToolCallID != "" {
		return m.ToolCallID
	}
	return m.ToolUseID
}

// ToolCalls returns the tool-call blocks of an assistant message, in order.
// It returns nil for every other role.
func (m Message) ToolCalls() []ContentBlock {
	if m.Role != RoleAssistant {
		return nil
	}
	var calls []ContentBlock
	for _, block := range m.Content {
		if block.IsToolCall() {
			calls = append(calls, block)
		}
	}
	return calls
}

// Interrupted reports whether an assistant message ended in an error or
// user abort. Interrupted turns are left exactly as emitted by the model.
func (m Message) Interrupted() bool {
	return m.Role == RoleAssistant && (m.StopReason == StopError || m.StopReason == StopAborted)
}

// NewTextBlock builds a prose content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewToolCallBlock builds a well-formed tool-call block.
func NewToolCallBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: BlockToolCall, ID: id, Name: name, Input: input}
}
