package conversation

import (
	"fmt"

	"github.com/huandu/go-clone"
)

// DefaultMaxRounds is the number of tool rounds allowed per query.
const DefaultMaxRounds = 2

// Chain is the ordered message log of one query together with the policy
// deciding whether another tool round may start. It is owned by a single
// query and is not safe for concurrent use.
type Chain struct {
	systemPrompt string
	maxRounds    int
	messages     []Message
}

func NewChain(systemPrompt string, maxRounds int) *Chain {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Chain{
		systemPrompt: systemPrompt,
		maxRounds:    maxRounds,
	}
}

// BuildSystemPrompt appends prior conversation history to the base prompt.
func BuildSystemPrompt(base, history string) string {
	if history == "" {
		return base
	}
	return fmt.Sprintf("%s\n\nPrevious conversation:\n%s", base, history)
}

func (c *Chain) SystemPrompt() string {
	return c.systemPrompt
}

func (c *Chain) MaxRounds() int {
	return c.maxRounds
}

func (c *Chain) AddUserMessage(text string) {
	c.messages = append(c.messages, NewUserMessage(text))
}

// AddAssistantMessage appends the model's turn, including any tool_use blocks.
func (c *Chain) AddAssistantMessage(m Message) {
	m.Role = RoleAssistant
	c.messages = append(c.messages, m)
}

// AddToolResults appends all results of a round as a single user turn.
// Nothing is appended when there are no results.
func (c *Chain) AddToolResults(results []Block) {
	if len(results) == 0 {
		return
	}
	c.messages = append(c.messages, NewToolResultsMessage(results...))
}

// Messages returns a deep copy of the log, so callers can hand it to an
// engine without aliasing the chain's storage.
func (c *Chain) Messages() []Message {
	if len(c.messages) == 0 {
		return nil
	}
	return clone.Clone(c.messages).([]Message)
}

func (c *Chain) Len() int {
	return len(c.messages)
}

// ShouldContinueRounds reports whether another tool round may start after
// completedRounds rounds.
func (c *Chain) ShouldContinueRounds(completedRounds int) bool {
	return completedRounds < c.maxRounds
}
