package settings

import (
	"io"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// StepSettings is the complete runtime configuration of the assistant.
type StepSettings struct {
	Chat       *ChatSettings       `yaml:"chat,omitempty" mapstructure:"chat"`
	API        *APISettings        `yaml:"api,omitempty" mapstructure:"api"`
	Embeddings *EmbeddingsSettings `yaml:"embeddings,omitempty" mapstructure:"embeddings"`
	Store      *StoreSettings      `yaml:"store,omitempty" mapstructure:"store"`
	Tools      *ToolSettings       `yaml:"tools,omitempty" mapstructure:"tools"`
}

func NewStepSettings() *StepSettings {
	return &StepSettings{
		Chat:       NewChatSettings(),
		API:        NewAPISettings(),
		Embeddings: NewEmbeddingsSettings(),
		Store:      NewStoreSettings(),
		Tools:      NewToolSettings(),
	}
}

// NewStepSettingsFromYAML decodes a settings document on top of the defaults.
func NewStepSettingsFromYAML(r io.Reader) (*StepSettings, error) {
	s := NewStepSettings()
	if err := yaml.NewDecoder(r).Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	return s, nil
}

// EnvPrefix is the prefix of every environment variable the CLI reads.
const EnvPrefix = "coursebot"

// SetDefaults registers every settings key with its default so that viper
// resolves environment variables for keys that never appear in a config file.
// envPrefix must match the prefix given to v.SetEnvPrefix.
func SetDefaults(v *viper.Viper, envPrefix string) {
	d := NewStepSettings()

	v.SetDefault("chat.api-type", string(d.Chat.ApiType))
	v.SetDefault("chat.engine", d.Chat.Engine)
	v.SetDefault("chat.max-response-tokens", d.Chat.MaxResponseTokens)
	v.SetDefault("chat.temperature", d.Chat.Temperature)
	v.SetDefault("chat.max-rounds", d.Chat.MaxRounds)
	v.SetDefault("chat.system-prompt", d.Chat.SystemPrompt)

	v.SetDefault("api.claude-api-key", "")
	v.SetDefault("api.claude-base-url", "")
	v.SetDefault("api.openai-api-key", "")
	v.SetDefault("api.openai-base-url", "")
	v.SetDefault("api.timeout", d.API.Timeout)

	v.SetDefault("embeddings.type", string(d.Embeddings.Type))
	v.SetDefault("embeddings.engine", d.Embeddings.Engine)
	v.SetDefault("embeddings.dimensions", d.Embeddings.Dimensions)
	v.SetDefault("embeddings.cache-size", d.Embeddings.CacheSize)

	v.SetDefault("store.backend", string(d.Store.Backend))
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.compress", d.Store.Compress)
	v.SetDefault("store.catalog-collection", d.Store.CatalogCollection)
	v.SetDefault("store.content-collection", d.Store.ContentCollection)
	v.SetDefault("store.weaviate-host", d.Store.WeaviateHost)
	v.SetDefault("store.weaviate-scheme", d.Store.WeaviateScheme)
	v.SetDefault("store.max-results", d.Store.MaxResults)

	v.SetDefault("tools.max-parallel", d.Tools.MaxParallel)
	v.SetDefault("tools.timeout", d.Tools.Timeout)
	v.SetDefault("tools.validate-arguments", d.Tools.ValidateArguments)

	// Conventional provider variables are honoured as fallbacks.
	_ = v.BindEnv("api.claude-api-key", envName(envPrefix, "api.claude-api-key"), "ANTHROPIC_API_KEY")
	_ = v.BindEnv("api.openai-api-key", envName(envPrefix, "api.openai-api-key"), "OPENAI_API_KEY")
}

func envName(prefix string, key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if prefix != "" {
		return strings.ToUpper(prefix) + "_" + name
	}
	return name
}

// NewStepSettingsFromViper resolves settings from flags, environment and
// config file, in viper's usual precedence.
func NewStepSettingsFromViper(v *viper.Viper) (*StepSettings, error) {
	s := NewStepSettings()
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal settings")
	}
	return s, s.Validate()
}

// Validate checks values that would otherwise fail late, on the first query.
func (s *StepSettings) Validate() error {
	if s.Chat == nil || s.API == nil || s.Embeddings == nil || s.Store == nil || s.Tools == nil {
		return errors.New("incomplete settings")
	}
	switch s.Chat.ApiType.Normalize() {
	case types.ApiTypeClaude, types.ApiTypeOpenAI:
	default:
		return errors.Errorf("unknown api type %q", s.Chat.ApiType)
	}
	switch s.Store.Backend {
	case types.StoreBackendChromem, types.StoreBackendWeaviate:
	default:
		return errors.Errorf("unknown store backend %q", s.Store.Backend)
	}
	switch s.Embeddings.Type {
	case types.EmbeddingsTypeOpenAI, types.EmbeddingsTypeHash:
	default:
		return errors.Errorf("unknown embeddings type %q", s.Embeddings.Type)
	}
	if s.Chat.MaxRounds < 1 {
		return errors.Errorf("max rounds must be at least 1, got %d", s.Chat.MaxRounds)
	}
	if s.Store.MaxResults < 1 {
		return errors.Errorf("max results must be at least 1, got %d", s.Store.MaxResults)
	}
	return nil
}

// GetMetadata returns the non-secret settings, for logging.
func (s *StepSettings) GetMetadata() map[string]interface{} {
	metadata := make(map[string]interface{})
	if s.Chat != nil {
		metadata["ai-api-type"] = string(s.Chat.ApiType)
		metadata["ai-engine"] = s.Chat.EngineOrDefault()
		metadata["ai-max-response-tokens"] = s.Chat.MaxResponseTokens
		metadata["ai-temperature"] = s.Chat.Temperature
		metadata["ai-max-rounds"] = s.Chat.MaxRounds
	}
	if s.Embeddings != nil {
		metadata["embeddings-type"] = string(s.Embeddings.Type)
		metadata["embeddings-engine"] = s.Embeddings.Engine
	}
	if s.Store != nil {
		metadata["store-backend"] = string(s.Store.Backend)
		metadata["store-max-results"] = s.Store.MaxResults
	}
	if s.Tools != nil {
		metadata["tools-max-parallel"] = s.Tools.MaxParallel
		metadata["tools-timeout"] = s.Tools.Timeout.String()
	}
	return metadata
}

func (s *StepSettings) Clone() *StepSettings {
	return &StepSettings{
		Chat:       s.Chat.Clone(),
		API:        s.API.Clone(),
		Embeddings: s.Embeddings.Clone(),
		Store:      s.Store.Clone(),
		Tools:      s.Tools.Clone(),
	}
}
