package openai

import (
	"context"
	"net/http"

	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine implements engine.Engine on the chat completions API.
type OpenAIEngine struct {
	client *go_openai.Client
	model  string
}

var _ engine.Engine = &OpenAIEngine{}

func MakeClient(apiSettings *settings.APISettings) (*go_openai.Client, error) {
	apiKey := apiSettings.APIKey(types.ApiTypeOpenAI)
	if apiKey == "" {
		return nil, errors.Wrap(engine.ErrMissingAPIKey, "openai")
	}
	config := go_openai.DefaultConfig(apiKey)
	if baseURL := apiSettings.BaseURL(types.ApiTypeOpenAI); baseURL != "" {
		config.BaseURL = baseURL
	}
	if apiSettings.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: apiSettings.Timeout}
	}
	return go_openai.NewClientWithConfig(config), nil
}

func NewOpenAIEngine(s *settings.StepSettings) (*OpenAIEngine, error) {
	if s == nil || s.Chat == nil || s.API == nil {
		return nil, errors.New("incomplete settings for openai engine")
	}
	client, err := MakeClient(s.API)
	if err != nil {
		return nil, err
	}
	return &OpenAIEngine{client: client, model: s.Chat.EngineOrDefault()}, nil
}

func (e *OpenAIEngine) Model() string {
	return e.model
}

func (e *OpenAIEngine) Call(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	r := *req
	if r.MaxTokens <= 0 {
		r.MaxTokens = settings.DefaultMaxResponseTokens
	}
	chatReq := MakeCompletionRequest(e.model, &r)

	log.Debug().
		Str("model", e.model).
		Int("num_messages", len(chatReq.Messages)).
		Int("num_tools", len(chatReq.Tools)).
		Msg("openai: sending request")

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *go_openai.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.Wrapf(err, "openai API error (status %d)", apiErr.HTTPStatusCode)
		}
		return nil, errors.Wrap(err, "openai request failed")
	}

	ret := responseFromOpenAI(resp)
	log.Debug().
		Str("id", ret.ID).
		Str("stop_reason", string(ret.StopReason)).
		Int("tool_calls", len(ret.ToolCalls())).
		Msg("openai: received response")
	return ret, nil
}
