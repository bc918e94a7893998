package middleware

import (
	"context"
	"time"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLoggingMiddleware logs a summary of every model call before and after it runs.
func NewLoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
			lg := logger
			// fall back to global if uninitialized
			if lg.GetLevel() == zerolog.NoLevel {
				lg = log.Logger
			}

			var numToolUse, numToolResult int
			for _, m := range req.Messages {
				numToolUse += len(m.ToolUses())
				numToolResult += len(m.ToolResults())
			}
			lg = lg.With().
				Int("message_count", len(req.Messages)).
				Int("tool_use_blocks", numToolUse).
				Int("tool_result_blocks", numToolResult).
				Int("tools_offered", len(req.Tools)).
				Logger()

			lg.Debug().Msg("engine: starting call")
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				lg.Error().Err(err).Dur("duration", time.Since(start)).Msg("engine: call failed")
				return resp, err
			}

			lg.Debug().
				Dur("duration", time.Since(start)).
				Str("stop_reason", string(resp.StopReason)).
				Int("text_blocks", countKind(resp.Message, conversation.BlockKindText)).
				Int("tool_calls", len(resp.Message.ToolUses())).
				Msg("engine: call completed")
			return resp, nil
		}
	}
}

func countKind(m conversation.Message, kind conversation.BlockKind) int {
	n := 0
	for _, b := range m.Blocks {
		if b.Kind == kind {
			n++
		}
	}
	return n
}
