package coursestore

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/philippgille/chromem-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// NewStoreFromSettings opens the configured backend. embed computes the
// vectors for both documents and queries.
func NewStoreFromSettings(ctx context.Context, s *settings.StoreSettings, embed EmbeddingFunc) (Store, error) {
	if s == nil {
		return nil, errors.New("no store settings")
	}
	if embed == nil {
		return nil, errors.New("no embedding function")
	}

	log.Debug().
		Str("backend", string(s.Backend)).
		Str("path", s.Path).
		Str("weaviate_host", s.WeaviateHost).
		Msg("coursestore: opening store")

	switch s.Backend {
	case types.StoreBackendChromem, "":
		db, err := OpenChromemDB(s.Path, s.Compress)
		if err != nil {
			return nil, err
		}
		return NewChromemStore(db, chromem.EmbeddingFunc(embed), ChromemOptions{
			CatalogCollection: s.CatalogCollection,
			ContentCollection: s.ContentCollection,
			MaxResults:        s.MaxResults,
		})
	case types.StoreBackendWeaviate:
		return NewWeaviateStore(ctx, embed, WeaviateOptions{
			Host:              s.WeaviateHost,
			Scheme:            s.WeaviateScheme,
			CatalogCollection: s.CatalogCollection,
			ContentCollection: s.ContentCollection,
			MaxResults:        s.MaxResults,
		})
	default:
		return nil, errors.Errorf("unknown store backend %q", s.Backend)
	}
}
