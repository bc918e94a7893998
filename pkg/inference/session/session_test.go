package session

import (
	"context"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/inference/toolloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAnswerer struct {
	histories []string
	block     chan struct{}
	started   chan struct{}
}

func (r *recordingAnswerer) AnswerQuery(ctx context.Context, query string, history string) *toolloop.Answer {
	r.histories = append(r.histories, history)
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	return &toolloop.Answer{QueryID: "q", Text: "answer to " + query}
}

func TestSession_HistoryKeepsLastExchanges(t *testing.T) {
	s := NewSession(2)
	assert.Equal(t, "", s.History())

	s.AddExchange("one", "1")
	s.AddExchange("two", "2")
	s.AddExchange("three", "3")

	assert.Equal(t, "User: two\nAssistant: 2\nUser: three\nAssistant: 3", s.History())
	assert.Len(t, s.Exchanges(), 2)
}

func TestSession_AskPassesHistory(t *testing.T) {
	s := NewSession(0)
	assert.Equal(t, DefaultMaxHistory, s.MaxHistory)
	a := &recordingAnswerer{}

	ans, err := s.Ask(context.Background(), a, "What is lesson 2 about?")
	require.NoError(t, err)
	assert.Equal(t, "answer to What is lesson 2 about?", ans.Text)

	_, err = s.Ask(context.Background(), a, "And lesson 3?")
	require.NoError(t, err)

	require.Len(t, a.histories, 2)
	assert.Equal(t, "", a.histories[0])
	assert.Equal(t, "User: What is lesson 2 about?\nAssistant: answer to What is lesson 2 about?", a.histories[1])
}

func TestSession_RejectsConcurrentQuery(t *testing.T) {
	s := NewSession(2)
	a := &recordingAnswerer{block: make(chan struct{}), started: make(chan struct{})}

	done := make(chan error)
	go func() {
		_, err := s.Ask(context.Background(), a, "first")
		done <- err
	}()
	<-a.started

	_, err := s.Ask(context.Background(), &recordingAnswerer{}, "second")
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)

	close(a.block)
	require.NoError(t, <-done)
}

func TestSession_NilSession(t *testing.T) {
	var s *Session
	_, err := s.Ask(context.Background(), &recordingAnswerer{}, "q")
	assert.ErrorIs(t, err, ErrSessionNil)
}

func TestManager(t *testing.T) {
	m := NewManager(1)
	s := m.CreateSession()
	s.AddExchange("q", "a")

	got, err := m.Get(s.SessionID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, "User: q\nAssistant: a", m.History(s.SessionID))

	m.Delete(s.SessionID)
	_, err = m.Get(s.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, "", m.History("missing"))
}
