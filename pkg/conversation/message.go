package conversation

import (
	"encoding/json"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/inference/tools"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type BlockKind string

const (
	BlockKindText       BlockKind = "text"
	BlockKindToolUse    BlockKind = "tool_use"
	BlockKindToolResult BlockKind = "tool_result"
)

// Block is one piece of message content. Which fields are set depends on Kind:
// text uses Text; tool_use uses ToolUseID, ToolName and Input; tool_result
// uses ToolUseID, Text and IsError.
type Block struct {
	Kind      BlockKind       `json:"type"`
	Text      string          `json:"text,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolName  string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

func NewTextBlock(text string) Block {
	return Block{Kind: BlockKindText, Text: text}
}

func NewToolUseBlock(call tools.ToolCall) Block {
	input := call.Arguments
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return Block{Kind: BlockKindToolUse, ToolUseID: call.ID, ToolName: call.Name, Input: input}
}

func NewToolResultBlock(toolUseID, content string, isError bool) Block {
	return Block{Kind: BlockKindToolResult, ToolUseID: toolUseID, Text: content, IsError: isError}
}

// Message is a single turn of the conversation.
type Message struct {
	Role   Role    `json:"role"`
	Blocks []Block `json:"content"`
}

func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Blocks: []Block{NewTextBlock(text)}}
}

func NewAssistantMessage(blocks ...Block) Message {
	return Message{Role: RoleAssistant, Blocks: blocks}
}

// NewToolResultsMessage wraps tool results in a user turn, which is how the
// results are returned to the model.
func NewToolResultsMessage(results ...Block) Message {
	return Message{Role: RoleUser, Blocks: results}
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var parts []string
	for _, b := range m.Blocks {
		if b.Kind == BlockKindText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ToolUses returns the tool_use blocks in the order they appear.
func (m Message) ToolUses() []Block {
	return m.blocksOfKind(BlockKindToolUse)
}

// ToolResults returns the tool_result blocks in the order they appear.
func (m Message) ToolResults() []Block {
	return m.blocksOfKind(BlockKindToolResult)
}

func (m Message) blocksOfKind(kind BlockKind) []Block {
	var ret []Block
	for _, b := range m.Blocks {
		if b.Kind == kind {
			ret = append(ret, b)
		}
	}
	return ret
}
