package engine

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/pkg/errors"
)

var (
	// ErrMalformedResponse is returned when a provider response cannot be
	// interpreted, for example a tool_use stop without any tool calls.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrMissingAPIKey is returned by engine constructors without credentials.
	ErrMissingAPIKey = errors.New("missing API key")
)

type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Request is a single model invocation. A nil Tools slice means the model is
// called without tool access.
type Request struct {
	System      string
	Messages    []conversation.Message
	Tools       []tools.ToolDefinition
	MaxTokens   int
	Temperature float32
}

// WithoutTools returns a copy of the request that offers no tools.
func (r Request) WithoutTools() Request {
	r.Tools = nil
	return r
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the provider-neutral result of a model call. Message always
// carries the assistant role and keeps tool_use blocks in provider order.
type Response struct {
	ID         string
	Model      string
	StopReason StopReason
	Message    conversation.Message
	Usage      Usage
}

func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return r.Message.Text()
}

// WantsTools reports whether the model stopped to request tool execution.
func (r *Response) WantsTools() bool {
	return r != nil && r.StopReason == StopReasonToolUse
}

// ToolCalls returns the requested calls in the order the model emitted them.
func (r *Response) ToolCalls() []tools.ToolCall {
	if r == nil {
		return nil
	}
	var calls []tools.ToolCall
	for _, b := range r.Message.ToolUses() {
		calls = append(calls, tools.ToolCall{ID: b.ToolUseID, Name: b.ToolName, Arguments: b.Input})
	}
	return calls
}

// Validate checks that the response can be acted upon: a tool_use stop must
// carry at least one call and any other stop must carry text.
func (r *Response) Validate() error {
	if r == nil {
		return errors.Wrap(ErrMalformedResponse, "nil response")
	}
	if r.WantsTools() {
		if len(r.ToolCalls()) == 0 {
			return errors.Wrap(ErrMalformedResponse, "tool_use stop without tool calls")
		}
		return nil
	}
	if r.Text() == "" {
		return errors.Wrapf(ErrMalformedResponse, "stop reason %q without text content", r.StopReason)
	}
	return nil
}

// Engine performs one synchronous model call.
type Engine interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req *Request) (*Response, error)

func (f EngineFunc) Call(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
