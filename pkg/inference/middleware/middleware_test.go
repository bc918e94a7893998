package middleware

import (
	"context"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_AppliesInOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	base := engine.EngineFunc(func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		order = append(order, "engine")
		return &engine.Response{StopReason: engine.StopReasonEndTurn, Message: conversation.NewAssistantMessage(conversation.NewTextBlock("ok"))}, nil
	})

	e := NewEngineWithMiddleware(base, mw("a"), mw("b"))
	resp, err := e.Call(context.Background(), &engine.Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, []string{"a", "b", "engine"}, order)
}

func TestUsageTracker(t *testing.T) {
	calls := 0
	base := engine.EngineFunc(func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("overloaded")
		}
		return &engine.Response{
			StopReason: engine.StopReasonEndTurn,
			Message:    conversation.NewAssistantMessage(conversation.NewTextBlock("ok")),
			Usage:      engine.Usage{InputTokens: 100, OutputTokens: 20},
		}, nil
	})
	u := NewUsageTracker()
	e := NewEngineWithMiddleware(base, NewLoggingMiddleware(zerolog.Nop()), u.Middleware())

	for i := 0; i < 3; i++ {
		_, _ = e.Call(context.Background(), &engine.Request{Messages: []conversation.Message{conversation.NewUserMessage("q")}})
	}

	assert.Equal(t, UsageSummary{Calls: 3, FailedCalls: 1, InputTokens: 200, OutputTokens: 40}, u.Summary())
}
