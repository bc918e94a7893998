package settings

import (
	"time"

	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/huandu/go-clone"
	"gopkg.in/yaml.v3"
)

// APISettings hold provider credentials and endpoints.
type APISettings struct {
	ClaudeAPIKey  string        `yaml:"claude_api_key,omitempty" mapstructure:"claude-api-key"`
	ClaudeBaseURL string        `yaml:"claude_base_url,omitempty" mapstructure:"claude-base-url"`
	OpenAIAPIKey  string        `yaml:"openai_api_key,omitempty" mapstructure:"openai-api-key"`
	OpenAIBaseURL string        `yaml:"openai_base_url,omitempty" mapstructure:"openai-base-url"`
	Timeout       time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

func NewAPISettings() *APISettings {
	return &APISettings{
		Timeout: 60 * time.Second,
	}
}

// UnmarshalYAML accepts the timeout as a number of seconds.
func (a *APISettings) UnmarshalYAML(value *yaml.Node) error {
	type Alias APISettings
	aux := &struct {
		Timeout *int `yaml:"timeout,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(a),
	}
	if err := value.Decode(aux); err != nil {
		return err
	}
	if aux.Timeout != nil {
		a.Timeout = time.Duration(*aux.Timeout) * time.Second
	}
	return nil
}

func (a *APISettings) APIKey(apiType types.ApiType) string {
	switch apiType.Normalize() {
	case types.ApiTypeClaude:
		return a.ClaudeAPIKey
	case types.ApiTypeOpenAI:
		return a.OpenAIAPIKey
	default:
		return ""
	}
}

func (a *APISettings) BaseURL(apiType types.ApiType) string {
	switch apiType.Normalize() {
	case types.ApiTypeClaude:
		return a.ClaudeBaseURL
	case types.ApiTypeOpenAI:
		return a.OpenAIBaseURL
	default:
		return ""
	}
}

func (a *APISettings) Clone() *APISettings {
	return clone.Clone(a).(*APISettings)
}
