package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesToOpenAI_ToolResultsFollowToolCalls(t *testing.T) {
	msgs := []conversation.Message{
		conversation.NewUserMessage("Compare lesson 1 of A and B"),
		conversation.NewAssistantMessage(
			conversation.NewToolUseBlock(tools.ToolCall{ID: "c1", Name: "search_course_content", Arguments: json.RawMessage(`{"query":"a"}`)}),
			conversation.NewToolUseBlock(tools.ToolCall{ID: "c2", Name: "search_course_content"}),
		),
		conversation.NewToolResultsMessage(
			conversation.NewToolResultBlock("c1", "result a", false),
			conversation.NewToolResultBlock("c2", "result b", false),
		),
	}

	got := messagesToOpenAI("sys", msgs)
	require.Len(t, got, 5)
	assert.Equal(t, go_openai.ChatMessageRoleSystem, got[0].Role)
	assert.Equal(t, go_openai.ChatMessageRoleUser, got[1].Role)
	assert.Equal(t, go_openai.ChatMessageRoleAssistant, got[2].Role)
	require.Len(t, got[2].ToolCalls, 2)
	assert.Equal(t, "{}", got[2].ToolCalls[1].Function.Arguments)
	assert.Equal(t, go_openai.ChatMessageRoleTool, got[3].Role)
	assert.Equal(t, "c1", got[3].ToolCallID)
	assert.Equal(t, "c2", got[4].ToolCallID)
}

func TestMakeCompletionRequest_ToolsOnlyWhenOffered(t *testing.T) {
	req := &engine.Request{
		Messages: []conversation.Message{conversation.NewUserMessage("hi")},
		Tools:    []tools.ToolDefinition{{Name: "get_course_outline", Description: "outline"}},
	}
	got := MakeCompletionRequest("gpt-test", req)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "get_course_outline", got.Tools[0].Function.Name)
	assert.Equal(t, "auto", got.ToolChoice)
	assert.Greater(t, got.Temperature, float32(0))

	plain := req.WithoutTools()
	got = MakeCompletionRequest("gpt-test", &plain)
	assert.Nil(t, got.Tools)
	assert.Nil(t, got.ToolChoice)
}

func TestResponseFromOpenAI_ToolCallsWinOverStop(t *testing.T) {
	resp := responseFromOpenAI(go_openai.ChatCompletionResponse{
		ID: "r1",
		Choices: []go_openai.ChatCompletionChoice{{
			FinishReason: go_openai.FinishReasonStop,
			Message: go_openai.ChatCompletionMessage{
				Role: go_openai.ChatMessageRoleAssistant,
				ToolCalls: []go_openai.ToolCall{{
					ID: "c1", Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{Name: "search_course_content", Arguments: `{"query":"x"}`},
				}},
			},
		}},
	})
	assert.Equal(t, engine.StopReasonToolUse, resp.StopReason)
	require.NoError(t, resp.Validate())
	assert.Equal(t, "c1", resp.ToolCalls()[0].ID)
}

func TestResponseFromOpenAI_NoChoicesIsMalformed(t *testing.T) {
	resp := responseFromOpenAI(go_openai.ChatCompletionResponse{ID: "r2"})
	assert.ErrorIs(t, resp.Validate(), engine.ErrMalformedResponse)
}

func TestOpenAIEngine_Call(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello there"}}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer srv.Close()

	s := settings.NewStepSettings()
	s.Chat.ApiType = types.ApiTypeOpenAI
	s.API.OpenAIAPIKey = "test"
	s.API.OpenAIBaseURL = srv.URL + "/v1"
	e, err := NewOpenAIEngine(s)
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultOpenAIEngine, e.Model())

	resp, err := e.Call(context.Background(), &engine.Request{Messages: []conversation.Message{conversation.NewUserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text())
	assert.Equal(t, engine.StopReasonEndTurn, resp.StopReason)
	assert.Equal(t, 3, resp.Usage.InputTokens)
}
