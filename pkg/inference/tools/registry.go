package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrConfiguration is returned when a tool cannot be registered.
var ErrConfiguration = errors.New("tool configuration error")

// Registry holds named tools in registration order. Registration happens at
// startup; afterwards the registry is only read.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register stores the tool under its declared name.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return errors.Wrap(ErrConfiguration, "tool is nil")
	}
	def := tool.Definition()
	if def.Name == "" {
		return errors.Wrap(ErrConfiguration, "tool must declare a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return errors.Wrapf(ErrConfiguration, "tool %q already registered", def.Name)
	}
	r.tools[def.Name] = tool
	r.order = append(r.order, def.Name)

	_, citable := tool.(CitableTool)
	log.Debug().Str("tool", def.Name).Bool("citable", citable).Msg("tools: registered tool")
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// ListDefinitions returns the definitions of all tools in registration order.
func (r *Registry) ListDefinitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Invoke dispatches to the named tool. An unknown name is a soft failure:
// the returned string tells the model the tool does not exist and the error
// is nil. Sources produced by citable tools are recorded into sources.
func (r *Registry) Invoke(ctx context.Context, sources *SourceSet, name string, args json.RawMessage) (string, error) {
	tool, ok := r.Lookup(name)
	if !ok {
		log.Warn().Str("tool", name).Msg("tools: unknown tool requested")
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	if citable, ok := tool.(CitableTool); ok {
		out, found, err := citable.ExecuteCited(ctx, args)
		if err != nil {
			return "", err
		}
		sources.Replace(found)
		return out, nil
	}
	return tool.Execute(ctx, args)
}

// LastSources returns the most recently populated source list of the set.
func (r *Registry) LastSources(sources *SourceSet) []Source {
	return sources.Last()
}

// ClearSources resets the tracked sources of the set.
func (r *Registry) ClearSources(sources *SourceSet) {
	sources.Clear()
}
