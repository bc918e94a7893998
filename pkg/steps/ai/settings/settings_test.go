package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepSettings_Defaults(t *testing.T) {
	s := NewStepSettings()
	require.NoError(t, s.Validate())

	assert.Equal(t, types.ApiTypeClaude, s.Chat.ApiType)
	assert.Equal(t, DefaultClaudeEngine, s.Chat.EngineOrDefault())
	assert.Equal(t, 800, s.Chat.MaxResponseTokens)
	assert.Equal(t, 0.0, s.Chat.Temperature)
	assert.Equal(t, 2, s.Chat.MaxRounds)
	assert.Equal(t, 5, s.Store.MaxResults)
	assert.Equal(t, 3, s.Tools.MaxParallel)
}

func TestNewStepSettingsFromYAML(t *testing.T) {
	doc := `
chat:
  api_type: openai
  max_rounds: 3
api:
  openai_api_key: sk-test
  timeout: 10
store:
  backend: weaviate
`
	s, err := NewStepSettingsFromYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, types.ApiTypeOpenAI, s.Chat.ApiType)
	assert.Equal(t, DefaultOpenAIEngine, s.Chat.EngineOrDefault())
	assert.Equal(t, 3, s.Chat.MaxRounds)
	assert.Equal(t, 800, s.Chat.MaxResponseTokens)
	assert.Equal(t, "sk-test", s.API.APIKey(types.ApiTypeOpenAI))
	assert.Equal(t, 10*time.Second, s.API.Timeout)
	assert.Equal(t, types.StoreBackendWeaviate, s.Store.Backend)
	assert.Equal(t, "course_catalog", s.Store.CatalogCollection)
}

func TestNewStepSettingsFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("COURSEBOT_CHAT_MAX_ROUNDS", "4")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v, EnvPrefix)

	s, err := NewStepSettingsFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Chat.MaxRounds)
	assert.Equal(t, "from-env", s.API.APIKey(types.ApiTypeAnthropic))
}

func TestSetDefaults_BindsPrefixedAPIKeys(t *testing.T) {
	t.Setenv("COURSEBOT_API_CLAUDE_API_KEY", "prefixed")
	t.Setenv("ANTHROPIC_API_KEY", "conventional")
	t.Setenv("OPENAI_API_KEY", "openai-conventional")

	// no AutomaticEnv: the keys must resolve through the explicit bindings
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	SetDefaults(v, EnvPrefix)

	assert.Equal(t, "COURSEBOT_API_CLAUDE_API_KEY", envName(EnvPrefix, "api.claude-api-key"))
	assert.Equal(t, "API_OPENAI_API_KEY", envName("", "api.openai-api-key"))

	s, err := NewStepSettingsFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", s.API.APIKey(types.ApiTypeAnthropic))
	assert.Equal(t, "openai-conventional", s.API.APIKey(types.ApiTypeOpenAI))
}

func TestStepSettings_ValidateRejectsUnknownValues(t *testing.T) {
	s := NewStepSettings()
	s.Chat.ApiType = "gemini"
	assert.Error(t, s.Validate())

	s = NewStepSettings()
	s.Store.Backend = "postgres"
	assert.Error(t, s.Validate())

	s = NewStepSettings()
	s.Chat.MaxRounds = 0
	assert.Error(t, s.Validate())
}

func TestStepSettings_CloneIsIndependent(t *testing.T) {
	s := NewStepSettings()
	c := s.Clone()
	c.Chat.MaxRounds = 9
	c.API.ClaudeAPIKey = "x"

	assert.Equal(t, 2, s.Chat.MaxRounds)
	assert.Empty(t, s.API.ClaudeAPIKey)
	assert.NotContains(t, s.GetMetadata(), "api-key")
}
