package openai

import (
	"math"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	go_openai "github.com/sashabaranov/go-openai"
)

// messagesToOpenAI flattens block-structured messages into chat messages.
// Tool results of a user turn become one "tool" message each, placed before
// any text of that turn, so they directly follow the assistant's tool_calls.
func messagesToOpenAI(system string, msgs []conversation.Message) []go_openai.ChatCompletionMessage {
	var ret []go_openai.ChatCompletionMessage
	if system != "" {
		ret = append(ret, go_openai.ChatCompletionMessage{Role: go_openai.ChatMessageRoleSystem, Content: system})
	}

	for _, m := range msgs {
		if m.Role == conversation.RoleAssistant {
			msg := go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleAssistant,
				Content: m.Text(),
			}
			for _, b := range m.ToolUses() {
				args := string(b.Input)
				if args == "" {
					args = "{}"
				}
				msg.ToolCalls = append(msg.ToolCalls, go_openai.ToolCall{
					ID:   b.ToolUseID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      b.ToolName,
						Arguments: args,
					},
				})
			}
			ret = append(ret, msg)
			continue
		}

		for _, b := range m.ToolResults() {
			ret = append(ret, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    b.Text,
				ToolCallID: b.ToolUseID,
			})
		}
		if text := m.Text(); text != "" {
			ret = append(ret, go_openai.ChatCompletionMessage{Role: go_openai.ChatMessageRoleUser, Content: text})
		}
	}
	return ret
}

func toolsToOpenAI(defs []tools.ToolDefinition) []go_openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	ret := make([]go_openai.Tool, 0, len(defs))
	for _, d := range defs {
		var params interface{} = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		if d.InputSchema != nil {
			params = d.InputSchema
		}
		ret = append(ret, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return ret
}

// MakeCompletionRequest builds the chat completion request for a provider-neutral one.
func MakeCompletionRequest(model string, req *engine.Request) go_openai.ChatCompletionRequest {
	temperature := req.Temperature
	if temperature == 0 {
		// A zero temperature is dropped by omitempty and the server default applies.
		temperature = math.SmallestNonzeroFloat32
	}
	ret := go_openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messagesToOpenAI(req.System, req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}
	if t := toolsToOpenAI(req.Tools); t != nil {
		ret.Tools = t
		ret.ToolChoice = "auto"
	}
	return ret
}

func stopReasonFromOpenAI(r go_openai.FinishReason) engine.StopReason {
	switch r {
	case go_openai.FinishReasonToolCalls, go_openai.FinishReasonFunctionCall:
		return engine.StopReasonToolUse
	case go_openai.FinishReasonLength:
		return engine.StopReasonMaxTokens
	default:
		return engine.StopReasonEndTurn
	}
}

func responseFromOpenAI(resp go_openai.ChatCompletionResponse) *engine.Response {
	ret := &engine.Response{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: engine.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		StopReason: engine.StopReasonEndTurn,
		Message:    conversation.NewAssistantMessage(),
	}
	if len(resp.Choices) == 0 {
		return ret
	}

	choice := resp.Choices[0]
	ret.StopReason = stopReasonFromOpenAI(choice.FinishReason)
	var blocks []conversation.Block
	if choice.Message.Content != "" {
		blocks = append(blocks, conversation.NewTextBlock(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		blocks = append(blocks, conversation.NewToolUseBlock(tools.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: []byte(tc.Function.Arguments),
		}))
	}
	// Some compatible servers report "stop" even when tool calls are present.
	if len(choice.Message.ToolCalls) > 0 {
		ret.StopReason = engine.StopReasonToolUse
	}
	ret.Message = conversation.NewAssistantMessage(blocks...)
	return ret
}
