package settings

import (
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/huandu/go-clone"
)

// StoreSettings select and configure the course index backend.
type StoreSettings struct {
	Backend types.StoreBackend `yaml:"backend,omitempty" mapstructure:"backend"`
	// Path of the persistent chromem database. Empty keeps the index in memory.
	Path     string `yaml:"path,omitempty" mapstructure:"path"`
	Compress bool   `yaml:"compress,omitempty" mapstructure:"compress"`

	CatalogCollection string `yaml:"catalog_collection,omitempty" mapstructure:"catalog-collection"`
	ContentCollection string `yaml:"content_collection,omitempty" mapstructure:"content-collection"`

	WeaviateHost   string `yaml:"weaviate_host,omitempty" mapstructure:"weaviate-host"`
	WeaviateScheme string `yaml:"weaviate_scheme,omitempty" mapstructure:"weaviate-scheme"`

	MaxResults int `yaml:"max_results,omitempty" mapstructure:"max-results"`
}

func NewStoreSettings() *StoreSettings {
	return &StoreSettings{
		Backend:           types.StoreBackendChromem,
		Path:              "",
		CatalogCollection: "course_catalog",
		ContentCollection: "course_content",
		WeaviateHost:      "localhost:8080",
		WeaviateScheme:    "http",
		MaxResults:        5,
	}
}

func (s *StoreSettings) Clone() *StoreSettings {
	return clone.Clone(s).(*StoreSettings)
}
