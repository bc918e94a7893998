package embeddings

import (
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// SettingsFactory creates embedding providers from step settings.
type SettingsFactory struct {
	embeddings *settings.EmbeddingsSettings
	api        *settings.APISettings
}

func NewSettingsFactory(embeddings *settings.EmbeddingsSettings, api *settings.APISettings) *SettingsFactory {
	return &SettingsFactory{embeddings: embeddings, api: api}
}

func NewSettingsFactoryFromStepSettings(s *settings.StepSettings) *SettingsFactory {
	return NewSettingsFactory(s.Embeddings, s.API)
}

// NewProvider returns the configured provider, wrapped in an LRU cache when
// a cache size is set.
func (f *SettingsFactory) NewProvider() (Provider, error) {
	if f.embeddings == nil {
		return nil, errors.New("no embeddings settings")
	}

	var p Provider
	switch f.embeddings.Type {
	case types.EmbeddingsTypeOpenAI:
		if f.api == nil || f.api.OpenAIAPIKey == "" {
			return nil, errors.New("missing openai api key for embeddings")
		}
		p = NewOpenAIProvider(
			f.api.OpenAIAPIKey,
			f.api.OpenAIBaseURL,
			openai.EmbeddingModel(f.embeddings.Engine),
			f.embeddings.Dimensions,
		)
	case types.EmbeddingsTypeHash:
		p = NewHashProvider(f.embeddings.Dimensions)
	default:
		return nil, errors.Errorf("unsupported embeddings type %q", f.embeddings.Type)
	}

	log.Debug().
		Str("type", string(f.embeddings.Type)).
		Str("model", p.GetModel().Name).
		Int("cache_size", f.embeddings.CacheSize).
		Msg("embeddings: created provider")

	if f.embeddings.CacheSize > 0 {
		return NewCachedProvider(p, f.embeddings.CacheSize), nil
	}
	return p, nil
}
