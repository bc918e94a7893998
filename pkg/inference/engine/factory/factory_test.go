package factory

import (
	"testing"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/claude"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/openai"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardEngineFactory_SupportedProviders(t *testing.T) {
	f := NewStandardEngineFactory()
	assert.Contains(t, f.SupportedProviders(), "claude")
	assert.Contains(t, f.SupportedProviders(), "anthropic")
	assert.Contains(t, f.SupportedProviders(), "openai")
	assert.Equal(t, "claude", f.DefaultProvider())
}

func TestStandardEngineFactory_CreateEngine_NilSettings(t *testing.T) {
	e, err := NewStandardEngineFactory().CreateEngine(nil)
	assert.Nil(t, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings cannot be nil")
}

func TestStandardEngineFactory_CreateEngine_Claude(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.ApiType = types.ApiTypeAnthropic
	s.API.ClaudeAPIKey = "test-api-key"

	e, err := NewStandardEngineFactory().CreateEngine(s)
	require.NoError(t, err)
	assert.IsType(t, &claude.ClaudeEngine{}, e)
}

func TestStandardEngineFactory_CreateEngine_OpenAI(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.ApiType = types.ApiTypeOpenAI
	s.API.OpenAIAPIKey = "test-api-key"

	e, err := NewEngineFromStepSettings(s)
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIEngine{}, e)
}

func TestStandardEngineFactory_CreateEngine_MissingAPIKey(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.ApiType = types.ApiTypeOpenAI

	e, err := NewStandardEngineFactory().CreateEngine(s)
	assert.Nil(t, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrMissingAPIKey)
}

func TestStandardEngineFactory_CreateEngine_UnsupportedProvider(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.ApiType = "gemini"

	e, err := NewStandardEngineFactory().CreateEngine(s)
	assert.Nil(t, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
