package conversation

import (
	"encoding/json"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_AppendsInOrder(t *testing.T) {
	c := NewChain("system", 2)
	c.AddUserMessage("What are Python variables?")
	c.AddAssistantMessage(NewAssistantMessage(
		NewTextBlock("let me look"),
		NewToolUseBlock(tools.ToolCall{ID: "t1", Name: "search_course_content", Arguments: json.RawMessage(`{"query":"variables"}`)}),
	))
	c.AddToolResults([]Block{NewToolResultBlock("t1", "[Python Basics - Lesson 2]\nvariables", false)})

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, RoleUser, msgs[2].Role)
	assert.Equal(t, "let me look", msgs[1].Text())
	require.Len(t, msgs[1].ToolUses(), 1)
	require.Len(t, msgs[2].ToolResults(), 1)
	assert.Equal(t, "t1", msgs[2].ToolResults()[0].ToolUseID)
}

func TestChain_EmptyToolResultsAreSkipped(t *testing.T) {
	c := NewChain("system", 2)
	c.AddUserMessage("hi")
	c.AddToolResults(nil)
	assert.Equal(t, 1, c.Len())
}

func TestChain_MessagesReturnsCopy(t *testing.T) {
	c := NewChain("system", 2)
	c.AddUserMessage("original")

	msgs := c.Messages()
	msgs[0].Blocks[0].Text = "mutated"

	assert.Equal(t, "original", c.Messages()[0].Text())
}

func TestChain_RoundPolicy(t *testing.T) {
	c := NewChain("system", 0)
	assert.Equal(t, DefaultMaxRounds, c.MaxRounds())
	assert.True(t, c.ShouldContinueRounds(0))
	assert.True(t, c.ShouldContinueRounds(1))
	assert.False(t, c.ShouldContinueRounds(2))
}

func TestBuildSystemPrompt(t *testing.T) {
	assert.Equal(t, "base", BuildSystemPrompt("base", ""))
	assert.Equal(t, "base\n\nPrevious conversation:\nUser: hi", BuildSystemPrompt("base", "User: hi"))
}
