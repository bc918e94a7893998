package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition describes a tool to the model. It is registered once at
// startup and never mutated afterwards.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// Tool is a named capability the model can request by name.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// CitableTool is implemented by tools whose output consists of citable
// passages. The returned sources replace whatever the per-query SourceSet
// held before, but only when at least one source was produced.
type CitableTool interface {
	Tool
	ExecuteCited(ctx context.Context, args json.RawMessage) (string, []Source, error)
}

// SchemaFor reflects the input schema of T with all definitions inlined.
func SchemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		// Expand definitions inline instead of using $refs
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	var v T
	schema := reflector.Reflect(&v)
	schema.Version = ""
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema
}

// ToolCall is a single tool-use request issued by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
