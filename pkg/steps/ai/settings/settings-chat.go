package settings

import (
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/huandu/go-clone"
)

// ChatSettings configure the model used to answer queries.
type ChatSettings struct {
	ApiType           types.ApiType `yaml:"api_type,omitempty" mapstructure:"api-type"`
	Engine            string        `yaml:"engine,omitempty" mapstructure:"engine"`
	MaxResponseTokens int           `yaml:"max_response_tokens,omitempty" mapstructure:"max-response-tokens"`
	Temperature       float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxRounds         int           `yaml:"max_rounds,omitempty" mapstructure:"max-rounds"`
	// SystemPrompt overrides the default system prompt template.
	SystemPrompt string `yaml:"system_prompt,omitempty" mapstructure:"system-prompt"`
}

const (
	DefaultClaudeEngine      = "claude-sonnet-4-20250514"
	DefaultOpenAIEngine      = "gpt-4o-mini"
	DefaultMaxResponseTokens = 800
	DefaultMaxRounds         = 2
)

func NewChatSettings() *ChatSettings {
	return &ChatSettings{
		ApiType:           types.ApiTypeClaude,
		Engine:            "",
		MaxResponseTokens: DefaultMaxResponseTokens,
		Temperature:       0,
		MaxRounds:         DefaultMaxRounds,
	}
}

// EngineOrDefault returns the configured model, falling back to a per-provider default.
func (s *ChatSettings) EngineOrDefault() string {
	if s.Engine != "" {
		return s.Engine
	}
	if s.ApiType.Normalize() == types.ApiTypeOpenAI {
		return DefaultOpenAIEngine
	}
	return DefaultClaudeEngine
}

func (s *ChatSettings) Clone() *ChatSettings {
	return clone.Clone(s).(*ChatSettings)
}
