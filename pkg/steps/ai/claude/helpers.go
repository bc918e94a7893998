package claude

import (
	"encoding/json"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/pkg/errors"
)

var emptyObjectSchema = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

// messageToClaudeMessage converts a conversation message to an Anthropic message.
func messageToClaudeMessage(msg conversation.Message) anthropic.Message {
	role := anthropic.RoleUser
	if msg.Role == conversation.RoleAssistant {
		role = anthropic.RoleAssistant
	}

	content := make([]anthropic.MessageContent, 0, len(msg.Blocks))
	for _, b := range msg.Blocks {
		switch b.Kind {
		case conversation.BlockKindText:
			content = append(content, anthropic.NewTextMessageContent(b.Text))
		case conversation.BlockKindToolUse:
			input := b.Input
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			content = append(content, anthropic.NewToolUseMessageContent(b.ToolUseID, b.ToolName, input))
		case conversation.BlockKindToolResult:
			content = append(content, anthropic.NewToolResultMessageContent(b.ToolUseID, b.Text, b.IsError))
		}
	}
	return anthropic.Message{Role: role, Content: content}
}

func toolsToClaudeTools(defs []tools.ToolDefinition) []anthropic.ToolDefinition {
	if len(defs) == 0 {
		return nil
	}
	ret := make([]anthropic.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		var schema interface{} = emptyObjectSchema
		if d.InputSchema != nil {
			schema = d.InputSchema
		}
		ret = append(ret, anthropic.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: schema,
		})
	}
	return ret
}

// MakeMessageRequest builds the Anthropic request for a provider-neutral one.
func MakeMessageRequest(model string, req *engine.Request) anthropic.MessagesRequest {
	msgs := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, messageToClaudeMessage(m))
	}

	temperature := req.Temperature
	ret := anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		Messages:    msgs,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: &temperature,
	}
	if claudeTools := toolsToClaudeTools(req.Tools); claudeTools != nil {
		ret.Tools = claudeTools
		ret.ToolChoice = &anthropic.ToolChoice{Type: "auto"}
	}
	return ret
}

func stopReasonFromClaude(r anthropic.MessagesStopReason) engine.StopReason {
	switch r {
	case anthropic.MessagesStopReasonToolUse:
		return engine.StopReasonToolUse
	case anthropic.MessagesStopReasonMaxTokens:
		return engine.StopReasonMaxTokens
	default:
		return engine.StopReasonEndTurn
	}
}

// responseFromClaude converts an Anthropic response, keeping content blocks
// in the order the model produced them.
func responseFromClaude(resp anthropic.MessagesResponse) (*engine.Response, error) {
	var blocks []conversation.Block
	for _, c := range resp.Content {
		switch c.Type {
		case anthropic.MessagesContentTypeText:
			if c.Text != nil {
				blocks = append(blocks, conversation.NewTextBlock(*c.Text))
			}
		case anthropic.MessagesContentTypeToolUse:
			if c.MessageContentToolUse == nil {
				return nil, errors.Wrap(engine.ErrMalformedResponse, "tool_use block without payload")
			}
			tu := c.MessageContentToolUse
			blocks = append(blocks, conversation.NewToolUseBlock(tools.ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: tu.Input,
			}))
		}
	}

	return &engine.Response{
		ID:         resp.ID,
		Model:      string(resp.Model),
		StopReason: stopReasonFromClaude(resp.StopReason),
		Message:    conversation.NewAssistantMessage(blocks...),
		Usage: engine.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
