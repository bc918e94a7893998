package embeddings

import "context"

// EmbeddingModel contains metadata about the embedding model
type EmbeddingModel struct {
	Name       string
	Dimensions int
}

// Provider defines the interface for generating embeddings
type Provider interface {
	// GenerateEmbedding creates an embedding vector for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateBatchEmbeddings creates embedding vectors for multiple texts at once
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	GetModel() EmbeddingModel
}

// Func adapts a Provider to the plain function signature vector stores expect.
func Func(p Provider) func(ctx context.Context, text string) ([]float32, error) {
	return p.GenerateEmbedding
}
