package middleware

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
)

// HandlerFunc processes one model request.
type HandlerFunc func(ctx context.Context, req *engine.Request) (*engine.Response, error)

// Middleware wraps a HandlerFunc with additional functionality.
// Middleware are applied in order: Chain(m1, m2, m3) results in m1(m2(m3(handler))).
type Middleware func(HandlerFunc) HandlerFunc

// Chain composes multiple middleware into a single HandlerFunc.
func Chain(handler HandlerFunc, middlewares ...Middleware) HandlerFunc {
	// Apply middlewares in reverse order so they execute in correct order
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// EngineWithMiddleware wraps an Engine with a middleware chain.
type EngineWithMiddleware struct {
	handler HandlerFunc
}

var _ engine.Engine = (*EngineWithMiddleware)(nil)

func NewEngineWithMiddleware(e engine.Engine, middlewares ...Middleware) *EngineWithMiddleware {
	return &EngineWithMiddleware{
		handler: Chain(e.Call, middlewares...),
	}
}

func (e *EngineWithMiddleware) Call(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	return e.handler(ctx, req)
}
