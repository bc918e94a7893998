package tools

import "time"

// ExecutorConfig controls how the tool calls of a single round are run.
type ExecutorConfig struct {
	MaxParallelTools int           `json:"max_parallel_tools"`
	ExecutionTimeout time.Duration `json:"execution_timeout"`
	// ValidateArguments rejects calls whose arguments violate the tool's
	// input schema before the tool runs.
	ValidateArguments bool `json:"validate_arguments"`
}

// DefaultExecutorConfig returns a sensible default configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxParallelTools:  3,
		ExecutionTimeout:  30 * time.Second,
		ValidateArguments: true,
	}
}

func (c ExecutorConfig) WithMaxParallelTools(maxParallel int) ExecutorConfig {
	c.MaxParallelTools = maxParallel
	return c
}

func (c ExecutorConfig) WithExecutionTimeout(timeout time.Duration) ExecutorConfig {
	c.ExecutionTimeout = timeout
	return c
}

func (c ExecutorConfig) WithArgumentValidation(validate bool) ExecutorConfig {
	c.ValidateArguments = validate
	return c
}
