package factory

import (
	"strings"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/claude"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/openai"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/pkg/errors"
)

// EngineFactory creates inference engines from settings, so callers never
// depend on a concrete provider.
type EngineFactory interface {
	CreateEngine(settings *settings.StepSettings) (engine.Engine, error)
	SupportedProviders() []string
	DefaultProvider() string
}

// StandardEngineFactory supports the Claude and OpenAI providers.
type StandardEngineFactory struct{}

func NewStandardEngineFactory() *StandardEngineFactory {
	return &StandardEngineFactory{}
}

// CreateEngine picks the provider from settings.Chat.ApiType, falling back
// to the default provider when it is empty.
func (f *StandardEngineFactory) CreateEngine(s *settings.StepSettings) (engine.Engine, error) {
	if s == nil {
		return nil, errors.New("settings cannot be nil")
	}
	if s.Chat == nil {
		return nil, errors.New("chat settings cannot be nil")
	}
	if s.API == nil {
		return nil, errors.New("API settings cannot be nil")
	}

	provider := types.ApiType(f.DefaultProvider())
	if s.Chat.ApiType != "" {
		provider = s.Chat.ApiType.Normalize()
	}

	switch provider {
	case types.ApiTypeClaude:
		e, err := claude.NewClaudeEngine(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid settings for provider %s", provider)
		}
		return e, nil
	case types.ApiTypeOpenAI:
		e, err := openai.NewOpenAIEngine(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid settings for provider %s", provider)
		}
		return e, nil
	default:
		supported := strings.Join(f.SupportedProviders(), ", ")
		return nil, errors.Errorf("unknown provider %s. Supported providers: %s", provider, supported)
	}
}

func (f *StandardEngineFactory) SupportedProviders() []string {
	return []string{
		string(types.ApiTypeClaude),
		string(types.ApiTypeAnthropic),
		string(types.ApiTypeOpenAI),
	}
}

func (f *StandardEngineFactory) DefaultProvider() string {
	return string(types.ApiTypeClaude)
}

// NewEngineFromStepSettings creates an engine with the standard factory.
func NewEngineFromStepSettings(s *settings.StepSettings) (engine.Engine, error) {
	return NewStandardEngineFactory().CreateEngine(s)
}

var _ EngineFactory = &StandardEngineFactory{}
