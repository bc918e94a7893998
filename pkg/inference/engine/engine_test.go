package engine

import (
	"testing"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Validate(t *testing.T) {
	var nilResp *Response
	assert.ErrorIs(t, nilResp.Validate(), ErrMalformedResponse)

	toolStop := &Response{StopReason: StopReasonToolUse, Message: conversation.NewAssistantMessage(conversation.NewTextBlock("thinking"))}
	assert.ErrorIs(t, toolStop.Validate(), ErrMalformedResponse)

	toolStop.Message.Blocks = append(toolStop.Message.Blocks, conversation.NewToolUseBlock(tools.ToolCall{ID: "1", Name: "search"}))
	require.NoError(t, toolStop.Validate())
	require.Len(t, toolStop.ToolCalls(), 1)
	assert.JSONEq(t, `{}`, string(toolStop.ToolCalls()[0].Arguments))

	empty := &Response{StopReason: StopReasonEndTurn, Message: conversation.NewAssistantMessage()}
	assert.ErrorIs(t, empty.Validate(), ErrMalformedResponse)

	answered := &Response{StopReason: StopReasonMaxTokens, Message: conversation.NewAssistantMessage(conversation.NewTextBlock("partial"))}
	require.NoError(t, answered.Validate())
	assert.False(t, answered.WantsTools())
}

func TestRequest_WithoutToolsLeavesOriginal(t *testing.T) {
	r := Request{Tools: []tools.ToolDefinition{{Name: "a"}}}
	stripped := r.WithoutTools()
	assert.Nil(t, stripped.Tools)
	assert.Len(t, r.Tools, 1)
}
