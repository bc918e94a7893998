package settings

import (
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/huandu/go-clone"
)

type EmbeddingsSettings struct {
	// Type selects the provider (openai, hash).
	Type types.EmbeddingsType `yaml:"type,omitempty" mapstructure:"type"`
	// Engine is the embedding model, e.g. text-embedding-3-small.
	Engine     string `yaml:"engine,omitempty" mapstructure:"engine"`
	Dimensions int    `yaml:"dimensions,omitempty" mapstructure:"dimensions"`
	// CacheSize bounds the in-memory LRU of query embeddings. Zero disables it.
	CacheSize int `yaml:"cache_size,omitempty" mapstructure:"cache-size"`
}

func NewEmbeddingsSettings() *EmbeddingsSettings {
	return &EmbeddingsSettings{
		Type:       types.EmbeddingsTypeOpenAI,
		Engine:     "text-embedding-3-small",
		Dimensions: 1536,
		CacheSize:  1000,
	}
}

func (s *EmbeddingsSettings) Clone() *EmbeddingsSettings {
	return clone.Clone(s).(*EmbeddingsSettings)
}
