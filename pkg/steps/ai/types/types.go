package types

import "strings"

type ApiType string

const (
	ApiTypeOpenAI ApiType = "openai"
	ApiTypeClaude ApiType = "claude"
	// ApiTypeAnthropic is accepted as an alias for ApiTypeClaude.
	ApiTypeAnthropic ApiType = "anthropic"
)

// Normalize lowercases the type and folds aliases onto their canonical name.
func (a ApiType) Normalize() ApiType {
	n := ApiType(strings.ToLower(strings.TrimSpace(string(a))))
	if n == ApiTypeAnthropic {
		return ApiTypeClaude
	}
	return n
}

type StoreBackend string

const (
	StoreBackendChromem  StoreBackend = "chromem"
	StoreBackendWeaviate StoreBackend = "weaviate"
)

type EmbeddingsType string

const (
	EmbeddingsTypeOpenAI EmbeddingsType = "openai"
	// EmbeddingsTypeHash is a deterministic local embedding used for offline
	// runs and tests. It has no semantic quality.
	EmbeddingsTypeHash EmbeddingsType = "hash"
)
