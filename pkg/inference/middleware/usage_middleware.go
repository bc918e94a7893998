package middleware

import (
	"context"
	"sync"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
)

// UsageTracker sums token usage over all calls made through its middleware.
type UsageTracker struct {
	mu     sync.Mutex
	calls  int
	failed int
	usage  engine.Usage
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

func (u *UsageTracker) Middleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
			resp, err := next(ctx, req)
			u.mu.Lock()
			defer u.mu.Unlock()
			u.calls++
			if err != nil || resp == nil {
				u.failed++
				return resp, err
			}
			u.usage.InputTokens += resp.Usage.InputTokens
			u.usage.OutputTokens += resp.Usage.OutputTokens
			return resp, nil
		}
	}
}

type UsageSummary struct {
	Calls        int
	FailedCalls  int
	InputTokens  int
	OutputTokens int
}

func (u *UsageTracker) Summary() UsageSummary {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageSummary{
		Calls:        u.calls,
		FailedCalls:  u.failed,
		InputTokens:  u.usage.InputTokens,
		OutputTokens: u.usage.OutputTokens,
	}
}
