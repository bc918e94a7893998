package tools

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CallResult is the outcome of one tool call. Err is set when the tool
// failed; Content is then empty.
type CallResult struct {
	Call     ToolCall
	Content  string
	Sources  []Source
	Err      error
	Duration time.Duration
}

func (r CallResult) Succeeded() bool {
	return r.Err == nil
}

// Executor runs the tool calls of one round through a Registry.
type Executor struct {
	registry *Registry
	config   ExecutorConfig
}

func NewExecutor(registry *Registry, config ExecutorConfig) *Executor {
	return &Executor{
		registry: registry,
		config:   config,
	}
}

// ExecuteAll runs every call and returns one result per call, in request
// order. Calls may run concurrently; results never depend on completion order.
func (e *Executor) ExecuteAll(ctx context.Context, calls []ToolCall) []CallResult {
	if len(calls) == 0 {
		return nil
	}
	results := make([]CallResult, len(calls))

	maxParallel := e.config.MaxParallelTools
	if maxParallel <= 1 || len(calls) == 1 {
		for i, call := range calls {
			results[i] = e.Execute(ctx, call)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			results[i] = e.Execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Execute runs a single call. Panics inside the tool are converted into
// errors so that one broken tool cannot take down the query.
func (e *Executor) Execute(ctx context.Context, call ToolCall) CallResult {
	return e.execute(ctx, NewSourceSet(), call)
}

// execute runs call with sources as the scope of its citations. The set is
// cleared when the call ends; the result keeps its own copy.
func (e *Executor) execute(ctx context.Context, sources *SourceSet, call ToolCall) (res CallResult) {
	defer e.registry.ClearSources(sources)
	start := time.Now()
	res.Call = call

	execCtx := ctx
	if e.config.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.config.ExecutionTimeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			res.Err = errors.Errorf("tool %s panicked: %v", call.Name, p)
			res.Content = ""
			res.Sources = nil
		}
		res.Duration = time.Since(start)
		log.Debug().
			Str("tool", call.Name).
			Str("tool_call_id", call.ID).
			Dur("duration", res.Duration).
			Bool("success", res.Err == nil).
			Int("sources", len(res.Sources)).
			Msg("tools: call finished")
	}()

	if e.config.ValidateArguments {
		if tool, ok := e.registry.Lookup(call.Name); ok {
			if err := ValidateArguments(tool.Definition(), call.Arguments); err != nil {
				res.Err = err
				return res
			}
		}
	}

	content, err := e.registry.Invoke(execCtx, sources, call.Name, call.Arguments)
	if err != nil {
		res.Err = errors.WithStack(err)
		return res
	}
	res.Content = content
	res.Sources = e.registry.LastSources(sources)
	return res
}
