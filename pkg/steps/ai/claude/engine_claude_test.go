package claude

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query string `json:"query" jsonschema:"required"`
}

func TestMakeMessageRequest_MapsBlocksAndTools(t *testing.T) {
	req := &engine.Request{
		System: "system prompt",
		Messages: []conversation.Message{
			conversation.NewUserMessage("What is covered in lesson 1?"),
			conversation.NewAssistantMessage(conversation.NewToolUseBlock(tools.ToolCall{
				ID: "toolu_1", Name: "search_course_content", Arguments: json.RawMessage(`{"query":"lesson 1"}`),
			})),
			conversation.NewToolResultsMessage(conversation.NewToolResultBlock("toolu_1", "content", false)),
		},
		Tools: []tools.ToolDefinition{
			{Name: "search_course_content", Description: "search", InputSchema: tools.SchemaFor[searchInput]()},
			{Name: "no_schema"},
		},
		MaxTokens: 800,
	}

	got := MakeMessageRequest("claude-test", req)
	assert.Equal(t, anthropic.Model("claude-test"), got.Model)
	assert.Equal(t, "system prompt", got.System)
	assert.Equal(t, 800, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, float32(0), *got.Temperature)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, anthropic.RoleUser, got.Messages[0].Role)
	assert.Equal(t, anthropic.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, anthropic.RoleUser, got.Messages[2].Role)
	assert.Equal(t, anthropic.MessagesContentTypeToolUse, got.Messages[1].Content[0].Type)
	assert.Equal(t, anthropic.MessagesContentTypeToolResult, got.Messages[2].Content[0].Type)

	require.Len(t, got.Tools, 2)
	assert.Equal(t, emptyObjectSchema, got.Tools[1].InputSchema)
	require.NotNil(t, got.ToolChoice)
	assert.Equal(t, "auto", got.ToolChoice.Type)

	withoutTools := req.WithoutTools()
	got = MakeMessageRequest("claude-test", &withoutTools)
	assert.Nil(t, got.Tools)
	assert.Nil(t, got.ToolChoice)
}

func newTestServer(t *testing.T, body string, seen *map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if seen != nil {
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newTestEngine(t *testing.T, url string) *ClaudeEngine {
	s := settings.NewStepSettings()
	s.API.ClaudeAPIKey = "test-key"
	s.API.ClaudeBaseURL = url + "/v1"
	e, err := NewClaudeEngine(s)
	require.NoError(t, err)
	return e
}

func TestClaudeEngine_CallParsesToolUse(t *testing.T) {
	var seen map[string]interface{}
	srv := newTestServer(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Let me search."},
			{"type": "tool_use", "id": "toolu_1", "name": "search_course_content", "input": {"query": "variables"}},
			{"type": "tool_use", "id": "toolu_2", "name": "get_course_outline", "input": {"course_title": "Python"}}
		],
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`, &seen)
	defer srv.Close()

	e := newTestEngine(t, srv.URL)
	resp, err := e.Call(context.Background(), &engine.Request{
		System:   "sys",
		Messages: []conversation.Message{conversation.NewUserMessage("hi")},
		Tools:    []tools.ToolDefinition{{Name: "search_course_content"}},
	})
	require.NoError(t, err)
	require.NoError(t, resp.Validate())

	assert.Equal(t, engine.StopReasonToolUse, resp.StopReason)
	assert.Equal(t, "Let me search.", resp.Text())
	calls := resp.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "toolu_1", calls[0].ID)
	assert.Equal(t, "get_course_outline", calls[1].Name)
	assert.JSONEq(t, `{"query":"variables"}`, string(calls[0].Arguments))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	assert.Equal(t, "sys", seen["system"])
	assert.EqualValues(t, settings.DefaultMaxResponseTokens, seen["max_tokens"])
}

func TestClaudeEngine_CallParsesEndTurn(t *testing.T) {
	srv := newTestServer(t, `{
		"id": "msg_2",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": "Variables hold values."}],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`, nil)
	defer srv.Close()

	resp, err := newTestEngine(t, srv.URL).Call(context.Background(), &engine.Request{
		Messages: []conversation.Message{conversation.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StopReasonEndTurn, resp.StopReason)
	assert.Equal(t, "Variables hold values.", resp.Text())
	assert.Empty(t, resp.ToolCalls())
}

func TestNewClaudeEngine_RequiresAPIKey(t *testing.T) {
	_, err := NewClaudeEngine(settings.NewStepSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrMissingAPIKey)
}
