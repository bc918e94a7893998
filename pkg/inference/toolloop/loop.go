package toolloop

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/conversation"
	"github.com/go-go-golems/coursebot/pkg/events"
	"github.com/go-go-golems/coursebot/pkg/inference/engine"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Messages returned instead of an answer when a query fails.
const (
	PartialInformationMessage = "I was able to gather some information, though I encountered issues completing my analysis. Please try rephrasing your question."
	TechnicalIssueMessage     = "I encountered a technical issue while processing your query. Please try again."
)

type LoopConfig struct {
	// MaxRounds bounds the tool rounds of a query. A final synthesis call
	// without tools follows when every round requested tools.
	MaxRounds   int
	MaxTokens   int
	Temperature float32
	// SystemPrompt is a text/template with sprig functions, rendered with
	// PromptData. Empty selects DefaultSystemPromptTemplate.
	SystemPrompt string
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxRounds: conversation.DefaultMaxRounds,
		MaxTokens: settings.DefaultMaxResponseTokens,
	}
}

// Answer is what a query returns to its caller. Sources are deduplicated
// and in order of first discovery. Err is set when Text is a fallback
// message.
type Answer struct {
	QueryID    string
	Text       string
	Sources    []tools.Source
	Outcome    OutcomeKind
	Err        error
	State      *RoundState
	ModelCalls int
}

// Loop answers queries by driving an engine through bounded rounds of tool
// calls. A Loop holds no per-query state and can serve concurrent queries.
type Loop struct {
	eng      engine.Engine
	registry *tools.Registry
	executor *tools.Executor
	cfg      LoopConfig
	execCfg  tools.ExecutorConfig
}

type Option func(*Loop)

func WithEngine(eng engine.Engine) Option {
	return func(l *Loop) { l.eng = eng }
}

func WithRegistry(reg *tools.Registry) Option {
	return func(l *Loop) { l.registry = reg }
}

func WithLoopConfig(cfg LoopConfig) Option {
	return func(l *Loop) { l.cfg = cfg }
}

func WithExecutorConfig(cfg tools.ExecutorConfig) Option {
	return func(l *Loop) { l.execCfg = cfg }
}

func New(opts ...Option) *Loop {
	l := &Loop{
		cfg:     DefaultLoopConfig(),
		execCfg: tools.DefaultExecutorConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.registry == nil {
		l.registry = tools.NewRegistry()
	}
	l.executor = tools.NewExecutor(l.registry, l.execCfg)
	return l
}

// NewFromSettings configures a loop from the chat and tool settings.
func NewFromSettings(s *settings.StepSettings, eng engine.Engine, reg *tools.Registry) *Loop {
	cfg := DefaultLoopConfig()
	execCfg := tools.DefaultExecutorConfig()
	if s.Chat != nil {
		cfg.MaxRounds = s.Chat.MaxRounds
		cfg.MaxTokens = s.Chat.MaxResponseTokens
		cfg.Temperature = float32(s.Chat.Temperature)
		cfg.SystemPrompt = s.Chat.SystemPrompt
	}
	if s.Tools != nil {
		execCfg = execCfg.
			WithMaxParallelTools(s.Tools.MaxParallel).
			WithExecutionTimeout(s.Tools.Timeout).
			WithArgumentValidation(s.Tools.ValidateArguments)
	}
	return New(WithEngine(eng), WithRegistry(reg), WithLoopConfig(cfg), WithExecutorConfig(execCfg))
}

func (l *Loop) Registry() *tools.Registry {
	return l.registry
}

func (l *Loop) MaxRounds() int {
	if l.cfg.MaxRounds <= 0 {
		return conversation.DefaultMaxRounds
	}
	return l.cfg.MaxRounds
}

// AnswerQuery runs up to MaxRounds tool rounds. history, when non-empty, is
// appended to the system prompt. It never returns an error: failures turn
// into a fallback text and are reported in Answer.Err.
func (l *Loop) AnswerQuery(ctx context.Context, query string, history string) *Answer {
	return l.answer(ctx, query, history, l.MaxRounds())
}

// AnswerOnce allows a single tool round followed by one call without tools.
func (l *Loop) AnswerOnce(ctx context.Context, query string, history string) *Answer {
	return l.answer(ctx, query, history, 1)
}

// queryRun is the state owned by one in-flight query.
type queryRun struct {
	id         string
	maxRounds  int
	chain      *conversation.Chain
	state      *RoundState
	modelCalls int
}

func (r *queryRun) meta() events.EventMetadata {
	return events.NewMetadata(r.id, r.state.Round)
}

func (l *Loop) answer(ctx context.Context, query string, history string, maxRounds int) *Answer {
	run := &queryRun{
		id:        uuid.NewString(),
		maxRounds: maxRounds,
		state:     NewRoundState(),
	}
	log.Debug().Str("query_id", run.id).Int("max_rounds", maxRounds).Msg("toolloop: starting query")
	events.PublishEventToContext(ctx, events.NewQueryStartEvent(run.meta(), query))

	outcome := l.safeRun(ctx, run, query, history)

	ans := &Answer{
		QueryID:    run.id,
		Sources:    run.state.Sources,
		Outcome:    outcome.Kind,
		State:      run.state,
		ModelCalls: run.modelCalls,
	}
	switch outcome.Kind {
	case OutcomeAnswered:
		ans.Text = outcome.Text
	default:
		ans.Outcome = OutcomeFailed
		ans.Err = outcome.Err
		if ans.Err == nil {
			ans.Err = errors.New("query ended without an answer")
		}
		if run.state.Started() {
			ans.Text = PartialInformationMessage
		} else {
			ans.Text = TechnicalIssueMessage
		}
		log.Error().Err(ans.Err).
			Str("query_id", run.id).
			Int("round", run.state.Round).
			Int("tools_executed", run.state.TotalToolsExecuted).
			Msg("toolloop: query failed")
		events.PublishEventToContext(ctx, events.NewErrorEvent(run.meta(), ans.Err))
	}

	log.Debug().
		Str("query_id", run.id).
		Str("outcome", ans.Outcome.String()).
		Int("rounds", run.state.Round).
		Int("model_calls", run.modelCalls).
		Int("sources", len(ans.Sources)).
		Msg("toolloop: query finished")
	events.PublishEventToContext(ctx, events.NewFinalEvent(run.meta(), ans.Text, ans.Outcome.String()))
	return ans
}

// safeRun converts panics below the query boundary into a failed outcome.
func (l *Loop) safeRun(ctx context.Context, run *queryRun, query string, history string) (outcome RoundOutcome) {
	defer func() {
		if p := recover(); p != nil {
			outcome = failed(errors.Errorf("panic while answering query: %v", p))
		}
	}()
	return l.run(ctx, run, query, history)
}

func (l *Loop) run(ctx context.Context, run *queryRun, query string, history string) RoundOutcome {
	if l.eng == nil {
		return failed(errors.New("tool loop engine is nil"))
	}
	if err := ctx.Err(); err != nil {
		return failed(errors.Wrap(err, "query cancelled"))
	}

	defs := l.registry.ListDefinitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	system, err := RenderSystemPrompt(l.cfg.SystemPrompt, PromptData{MaxRounds: run.maxRounds, Tools: names})
	if err != nil {
		return failed(err)
	}

	run.chain = conversation.NewChain(conversation.BuildSystemPrompt(system, history), run.maxRounds)
	run.chain.AddUserMessage(query)

	for run.chain.ShouldContinueRounds(run.state.Round) {
		run.state.StartRound()
		outcome := l.executeRound(ctx, run, defs)
		if outcome.Kind != OutcomeToolsExecuted {
			return outcome
		}
	}

	return l.synthesize(ctx, run, defs)
}

// executeRound calls the engine with tools and, if it asks for them, runs
// every requested call. Each call yields exactly one tool_result block.
func (l *Loop) executeRound(ctx context.Context, run *queryRun, defs []tools.ToolDefinition) RoundOutcome {
	round := run.state.Round
	log.Debug().Str("query_id", run.id).Int("round", round).Msg("toolloop: engine inference step")
	events.PublishEventToContext(ctx, events.NewRoundStartEvent(run.meta(), run.maxRounds, len(defs) > 0))

	req := l.request(run, defs)
	resp, err := l.call(ctx, run, &req)
	if err != nil {
		return failed(errors.Wrapf(err, "round %d", round))
	}
	if !resp.WantsTools() {
		return answered(resp.Text())
	}

	calls := resp.ToolCalls()
	for _, c := range calls {
		events.PublishEventToContext(ctx, events.NewToolCallEvent(run.meta(), c))
	}
	results := l.executor.ExecuteAll(ctx, calls)

	blocks := make([]conversation.Block, 0, len(results))
	var roundSources []tools.Source
	for _, r := range results {
		result := events.ToolResult{
			ID:         r.Call.ID,
			Name:       r.Call.Name,
			Succeeded:  r.Succeeded(),
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.Succeeded() {
			run.state.RecordInvocation(r.Call.Name, r.Call.ID, len(r.Content), true)
			blocks = append(blocks, conversation.NewToolResultBlock(r.Call.ID, r.Content, false))
			roundSources = append(roundSources, r.Sources...)
			result.Length = len(r.Content)
		} else {
			msg := r.Err.Error()
			run.state.RecordInvocation(r.Call.Name, r.Call.ID, len(msg), false)
			run.state.RecordError(r.Call.Name, msg)
			log.Warn().Err(r.Err).
				Str("query_id", run.id).
				Int("round", round).
				Str("tool", r.Call.Name).
				Msg("toolloop: tool execution failed")
			blocks = append(blocks, conversation.NewToolResultBlock(r.Call.ID, "Tool execution failed: "+msg, true))
			result.Error = msg
		}
		events.PublishEventToContext(ctx, events.NewToolResultEvent(run.meta(), result))
	}

	if added := run.state.MergeSources(roundSources); len(added) > 0 {
		events.PublishEventToContext(ctx, events.NewSourcesEvent(run.meta(), added))
	}
	run.chain.AddAssistantMessage(resp.Message)
	run.chain.AddToolResults(blocks)
	return toolsExecuted()
}

// synthesize makes the final call without tools, so the model has to answer.
func (l *Loop) synthesize(ctx context.Context, run *queryRun, defs []tools.ToolDefinition) RoundOutcome {
	log.Debug().Str("query_id", run.id).Int("rounds", run.state.Round).Msg("toolloop: final synthesis")
	events.PublishEventToContext(ctx, events.NewRoundStartEvent(run.meta(), run.maxRounds, false))

	req := l.request(run, defs).WithoutTools()
	resp, err := l.call(ctx, run, &req)
	if err != nil {
		return failed(errors.Wrap(err, "final synthesis"))
	}
	if text := resp.Text(); text != "" {
		return answered(text)
	}
	return failed(errors.Wrap(engine.ErrMalformedResponse, "tool use requested during final synthesis"))
}

func (l *Loop) request(run *queryRun, defs []tools.ToolDefinition) engine.Request {
	req := engine.Request{
		System:      run.chain.SystemPrompt(),
		Messages:    run.chain.Messages(),
		MaxTokens:   l.cfg.MaxTokens,
		Temperature: l.cfg.Temperature,
	}
	if len(defs) > 0 {
		req.Tools = defs
	}
	return req
}

func (l *Loop) call(ctx context.Context, run *queryRun, req *engine.Request) (*engine.Response, error) {
	run.modelCalls++
	resp, err := l.eng.Call(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "model call failed")
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("query_id", run.id).
		Str("stop_reason", string(resp.StopReason)).
		Int("tool_calls", len(resp.ToolCalls())).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("toolloop: model responded")
	return resp, nil
}
