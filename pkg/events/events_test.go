package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventFromJson_RoundTripsConcreteTypes(t *testing.T) {
	meta := NewMetadata("q1", 2)
	n := 3
	in := []Event{
		NewQueryStartEvent(meta, "What are variables?"),
		NewRoundStartEvent(meta, 2, true),
		NewToolCallEvent(meta, tools.ToolCall{ID: "t1", Name: "search_course_content", Arguments: json.RawMessage(`{"query":"x"}`)}),
		NewToolResultEvent(meta, ToolResult{ID: "t1", Name: "search_course_content", Length: 10, Succeeded: true}),
		NewSourcesEvent(meta, []tools.Source{{CourseTitle: "A", LessonNumber: &n}}),
		NewFinalEvent(meta, "answer", "answered"),
	}
	for _, e := range in {
		b, err := json.Marshal(e)
		require.NoError(t, err)
		out, err := NewEventFromJson(b)
		require.NoError(t, err)
		assert.Equal(t, e.Type(), out.Type())
		assert.Equal(t, "q1", out.Metadata().QueryID)
		assert.Equal(t, 2, out.Metadata().Round)
	}

	_, err := NewEventFromJson([]byte(`{"type":"bogus"}`))
	assert.Error(t, err)
}

func TestPublishEventToContext(t *testing.T) {
	ctx := context.Background()
	PublishEventToContext(ctx, NewFinalEvent(NewMetadata("q", 1), "x", "answered"))

	a, b := &CollectingSink{}, &CollectingSink{}
	ctx = WithEventSinks(ctx, a)
	ctx = WithEventSinks(ctx, b)
	PublishEventToContext(ctx, NewRoundStartEvent(NewMetadata("q", 1), 2, true))

	assert.Equal(t, []EventType{EventTypeRoundStart}, a.Types())
	assert.Equal(t, []EventType{EventTypeRoundStart}, b.Types())
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	meta := NewMetadata("q", 1)
	require.NoError(t, PrintEvent(&buf, NewRoundStartEvent(meta, 2, true)))
	require.NoError(t, PrintEvent(&buf, NewToolCallEvent(meta, tools.ToolCall{ID: "t1", Name: "search", Arguments: json.RawMessage(`{"query":"x"}`)})))
	require.NoError(t, PrintEvent(&buf, NewRoundStartEvent(meta, 2, false)))

	out := buf.String()
	assert.Contains(t, out, "--- round 1/2")
	assert.Contains(t, out, `arguments: '{"query":"x"}'`)
	assert.Contains(t, out, "--- synthesis")
}

func TestEventRouter_DeliversToHandler(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)

	received := make(chan Event, 1)
	router.AddHandler("test", "progress", func(msg *message.Message) error {
		defer msg.Ack()
		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		received <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	require.NoError(t, router.NewSink("progress").PublishEvent(NewFinalEvent(NewMetadata("q", 1), "done", "answered")))

	select {
	case e := <-received:
		assert.Equal(t, EventTypeFinal, e.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	require.NoError(t, router.Close())
}
