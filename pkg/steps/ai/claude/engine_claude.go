package claude

import (
	"context"
	"net/http"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ClaudeEngine implements engine.Engine on the Anthropic Messages API.
type ClaudeEngine struct {
	client *anthropic.Client
	model  string
}

var _ engine.Engine = &ClaudeEngine{}

// NewClaudeEngine creates a Claude engine from the chat and API settings.
func NewClaudeEngine(s *settings.StepSettings, opts ...anthropic.ClientOption) (*ClaudeEngine, error) {
	if s == nil || s.Chat == nil || s.API == nil {
		return nil, errors.New("incomplete settings for claude engine")
	}
	apiKey := s.API.APIKey(types.ApiTypeClaude)
	if apiKey == "" {
		return nil, errors.Wrap(engine.ErrMissingAPIKey, "claude")
	}

	clientOpts := []anthropic.ClientOption{}
	if baseURL := s.API.BaseURL(types.ApiTypeClaude); baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(baseURL))
	}
	if s.API.Timeout > 0 {
		clientOpts = append(clientOpts, anthropic.WithHTTPClient(&http.Client{Timeout: s.API.Timeout}))
	}
	clientOpts = append(clientOpts, opts...)

	return &ClaudeEngine{
		client: anthropic.NewClient(apiKey, clientOpts...),
		model:  s.Chat.EngineOrDefault(),
	}, nil
}

func (e *ClaudeEngine) Model() string {
	return e.model
}

// Call sends one non-streaming Messages request.
func (e *ClaudeEngine) Call(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	r := *req
	if r.MaxTokens <= 0 {
		r.MaxTokens = settings.DefaultMaxResponseTokens
	}
	claudeReq := MakeMessageRequest(e.model, &r)

	log.Debug().
		Str("model", e.model).
		Int("num_messages", len(claudeReq.Messages)).
		Int("num_tools", len(claudeReq.Tools)).
		Int("max_tokens", claudeReq.MaxTokens).
		Msg("claude: sending request")

	resp, err := e.client.CreateMessages(ctx, claudeReq)
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.Wrapf(err, "claude API error (%s)", apiErr.Type)
		}
		return nil, errors.Wrap(err, "claude request failed")
	}

	ret, err := responseFromClaude(resp)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("id", ret.ID).
		Str("stop_reason", string(ret.StopReason)).
		Int("tool_calls", len(ret.ToolCalls())).
		Int("input_tokens", ret.Usage.InputTokens).
		Int("output_tokens", ret.Usage.OutputTokens).
		Msg("claude: received response")

	return ret, nil
}
