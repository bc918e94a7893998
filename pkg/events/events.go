package events

import (
	"encoding/json"

	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	EventTypeQueryStart EventType = "query-start"
	EventTypeRoundStart EventType = "round-start"
	// Model requested a tool call
	EventTypeToolCall EventType = "tool-call"
	// A tool call finished locally, successfully or not
	EventTypeToolResult EventType = "tool-result"
	EventTypeSources    EventType = "sources"
	EventTypeFinal      EventType = "final"
	EventTypeError      EventType = "error"
)

// EventMetadata ties an event to the query and round that produced it.
type EventMetadata struct {
	ID      uuid.UUID `json:"message_id"`
	QueryID string    `json:"query_id,omitempty"`
	Round   int       `json:"round,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	e.Str("query_id", em.QueryID)
	e.Int("round", em.Round)
}

func NewMetadata(queryID string, round int) EventMetadata {
	return EventMetadata{ID: uuid.New(), QueryID: queryID, Round: round}
}

type Event interface {
	Type() EventType
	Metadata() EventMetadata
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta"`
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

type EventQueryStart struct {
	EventImpl
	Query string `json:"query"`
}

func NewQueryStartEvent(meta EventMetadata, query string) *EventQueryStart {
	return &EventQueryStart{EventImpl: EventImpl{Type_: EventTypeQueryStart, Metadata_: meta}, Query: query}
}

type EventRoundStart struct {
	EventImpl
	MaxRounds    int  `json:"max_rounds"`
	ToolsOffered bool `json:"tools_offered"`
}

func NewRoundStartEvent(meta EventMetadata, maxRounds int, toolsOffered bool) *EventRoundStart {
	return &EventRoundStart{
		EventImpl:    EventImpl{Type_: EventTypeRoundStart, Metadata_: meta},
		MaxRounds:    maxRounds,
		ToolsOffered: toolsOffered,
	}
}

type EventToolCall struct {
	EventImpl
	ToolCall tools.ToolCall `json:"tool_call"`
}

func NewToolCallEvent(meta EventMetadata, call tools.ToolCall) *EventToolCall {
	return &EventToolCall{EventImpl: EventImpl{Type_: EventTypeToolCall, Metadata_: meta}, ToolCall: call}
}

type ToolResult struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Length     int    `json:"length" yaml:"length"`
	Succeeded  bool   `json:"succeeded" yaml:"succeeded"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
}

type EventToolResult struct {
	EventImpl
	ToolResult ToolResult `json:"tool_result"`
}

func NewToolResultEvent(meta EventMetadata, result ToolResult) *EventToolResult {
	return &EventToolResult{EventImpl: EventImpl{Type_: EventTypeToolResult, Metadata_: meta}, ToolResult: result}
}

// EventSources carries the sources that were new in a round.
type EventSources struct {
	EventImpl
	Sources []tools.Source `json:"sources"`
}

func NewSourcesEvent(meta EventMetadata, sources []tools.Source) *EventSources {
	return &EventSources{EventImpl: EventImpl{Type_: EventTypeSources, Metadata_: meta}, Sources: sources}
}

type EventFinal struct {
	EventImpl
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

func NewFinalEvent(meta EventMetadata, text string, outcome string) *EventFinal {
	return &EventFinal{EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: meta}, Text: text, Outcome: outcome}
}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(meta EventMetadata, err error) *EventError {
	return &EventError{EventImpl: EventImpl{Type_: EventTypeError, Metadata_: meta}, ErrorString: err.Error()}
}

func (e EventError) Error() error {
	return errors.New(e.ErrorString)
}

// NewEventFromJson decodes an event serialized by a sink.
func NewEventFromJson(b []byte) (Event, error) {
	var e EventImpl
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}

	var ret Event
	switch e.Type_ {
	case EventTypeQueryStart:
		ret = &EventQueryStart{}
	case EventTypeRoundStart:
		ret = &EventRoundStart{}
	case EventTypeToolCall:
		ret = &EventToolCall{}
	case EventTypeToolResult:
		ret = &EventToolResult{}
	case EventTypeSources:
		ret = &EventSources{}
	case EventTypeFinal:
		ret = &EventFinal{}
	case EventTypeError:
		ret = &EventError{}
	default:
		return nil, errors.Errorf("unknown event type: %s", e.Type_)
	}
	if err := json.Unmarshal(b, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
