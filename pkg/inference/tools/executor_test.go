package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepyTool struct {
	name  string
	delay time.Duration
}

func (t sleepyTool) Definition() ToolDefinition {
	return ToolDefinition{Name: t.name}
}

func (t sleepyTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	select {
	case <-time.After(t.delay):
		return t.name, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type failingTool struct{}

func (failingTool) Definition() ToolDefinition { return ToolDefinition{Name: "fail"} }

func (failingTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return "", errors.New("index unavailable")
}

type panickyTool struct{}

func (panickyTool) Definition() ToolDefinition { return ToolDefinition{Name: "panic"} }

func (panickyTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	panic("boom")
}

func TestExecutor_ResultsFollowRequestOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(sleepyTool{name: "slow", delay: 30 * time.Millisecond}))
	require.NoError(t, reg.Register(sleepyTool{name: "fast", delay: time.Millisecond}))

	exec := NewExecutor(reg, DefaultExecutorConfig().WithMaxParallelTools(4))
	results := exec.ExecuteAll(context.Background(), []ToolCall{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
		{ID: "3", Name: "slow"},
	})

	require.Len(t, results, 3)
	for i, id := range []string{"1", "2", "3"} {
		assert.Equal(t, id, results[i].Call.ID)
		assert.True(t, results[i].Succeeded())
	}
	assert.Equal(t, "fast", results[1].Content)
}

func TestExecutor_FailuresAndPanicsBecomeErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(failingTool{}))
	require.NoError(t, reg.Register(panickyTool{}))

	exec := NewExecutor(reg, DefaultExecutorConfig().WithMaxParallelTools(1))
	results := exec.ExecuteAll(context.Background(), []ToolCall{
		{ID: "a", Name: "fail"},
		{ID: "b", Name: "panic"},
		{ID: "c", Name: "missing"},
	})

	require.Len(t, results, 3)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "index unavailable")
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "panicked")
	require.NoError(t, results[2].Err)
	assert.Equal(t, "Tool 'missing' not found", results[2].Content)
}

func TestExecutor_TimeoutIsAppliedPerCall(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(sleepyTool{name: "slow", delay: time.Second}))

	exec := NewExecutor(reg, DefaultExecutorConfig().WithExecutionTimeout(10*time.Millisecond))
	res := exec.Execute(context.Background(), ToolCall{ID: "1", Name: "slow"})
	require.Error(t, res.Err)
	assert.Less(t, res.Duration, time.Second)
}

func TestExecutor_CollectsSourcesPerCall(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(citingTool{sources: []Source{{CourseTitle: "A", LessonNumber: lesson(2)}}}))

	exec := NewExecutor(reg, DefaultExecutorConfig())
	results := exec.ExecuteAll(context.Background(), []ToolCall{{ID: "1", Name: "cite"}, {ID: "2", Name: "cite"}})
	require.Len(t, results, 2)
	for _, r := range results {
		require.Len(t, r.Sources, 1)
		assert.Equal(t, "A", r.Sources[0].CourseTitle)
	}
}

func TestExecutor_ClearsSourceSetWhenCallEnds(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(citingTool{sources: []Source{{CourseTitle: "A", LessonNumber: lesson(2)}}}))
	exec := NewExecutor(reg, DefaultExecutorConfig())

	set := NewSourceSet()
	res := exec.execute(context.Background(), set, ToolCall{ID: "1", Name: "cite"})
	require.NoError(t, res.Err)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "A", res.Sources[0].CourseTitle)
	assert.Empty(t, set.Last())

	// sources left over from an earlier scope are not reported by a failing call
	require.NoError(t, reg.Register(failingTool{}))
	set.Replace([]Source{{CourseTitle: "stale"}})
	res = exec.execute(context.Background(), set, ToolCall{ID: "2", Name: "fail"})
	require.Error(t, res.Err)
	assert.Empty(t, res.Sources)
	assert.Empty(t, set.Last())
}

func TestExecutor_RejectsArgumentsViolatingSchema(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool{name: "echo"}))

	exec := NewExecutor(reg, DefaultExecutorConfig())
	res := exec.Execute(context.Background(), ToolCall{ID: "1", Name: "echo", Arguments: json.RawMessage(`{"text": 3}`)})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrInvalidArguments)

	res = exec.Execute(context.Background(), ToolCall{ID: "2", Name: "echo", Arguments: json.RawMessage(`{"text": "hi"}`)})
	require.NoError(t, res.Err)
	assert.Equal(t, "hi", res.Content)

	exec = NewExecutor(reg, DefaultExecutorConfig().WithArgumentValidation(false))
	res = exec.Execute(context.Background(), ToolCall{ID: "3", Name: "echo", Arguments: json.RawMessage(`{"text": "ok", "extra": 1}`)})
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Content)
}

func TestValidateArguments(t *testing.T) {
	def := echoTool{name: "echo"}.Definition()
	assert.NoError(t, ValidateArguments(def, json.RawMessage(`{"text":"a"}`)))
	assert.Error(t, ValidateArguments(def, nil), "text is required")
	assert.NoError(t, ValidateArguments(ToolDefinition{Name: "free"}, json.RawMessage(`{"anything":true}`)))
}
