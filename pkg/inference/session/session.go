package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-go-golems/coursebot/pkg/inference/toolloop"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultMaxHistory is the number of exchanges kept per session.
const DefaultMaxHistory = 2

var (
	ErrSessionNil           = errors.New("session is nil")
	ErrSessionAlreadyActive = errors.New("session already has an active query")
	ErrSessionNotFound      = errors.New("session not found")
)

// Exchange is one answered user query.
type Exchange struct {
	Query  string
	Answer string
}

// Answerer is implemented by *toolloop.Loop.
type Answerer interface {
	AnswerQuery(ctx context.Context, query string, history string) *toolloop.Answer
}

// Session is a multi-turn conversation. It keeps the last MaxHistory
// exchanges and allows one query at a time.
type Session struct {
	SessionID  string
	MaxHistory int

	mu        sync.Mutex
	exchanges []Exchange
	active    bool
}

func NewSession(maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Session{
		SessionID:  uuid.NewString(),
		MaxHistory: maxHistory,
	}
}

// AddExchange appends an exchange and drops the oldest ones beyond MaxHistory.
func (s *Session) AddExchange(query, answer string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, Exchange{Query: query, Answer: answer})
	if len(s.exchanges) > s.MaxHistory {
		s.exchanges = append([]Exchange(nil), s.exchanges[len(s.exchanges)-s.MaxHistory:]...)
	}
}

func (s *Session) Exchanges() []Exchange {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exchange(nil), s.exchanges...)
}

// History renders the kept exchanges as "User: ...\nAssistant: ..." lines.
// It is empty for a new session.
func (s *Session) History() string {
	var lines []string
	for _, e := range s.Exchanges() {
		lines = append(lines, fmt.Sprintf("User: %s", e.Query), fmt.Sprintf("Assistant: %s", e.Answer))
	}
	return strings.Join(lines, "\n")
}

// Ask answers query with the session history and records the exchange.
// Fallback answers are recorded too, so the model sees what the user saw.
func (s *Session) Ask(ctx context.Context, a Answerer, query string) (*toolloop.Answer, error) {
	if s == nil {
		return nil, ErrSessionNil
	}
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrSessionAlreadyActive
	}
	s.active = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	ans := a.AnswerQuery(ctx, query, s.History())
	s.AddExchange(query, ans.Text)
	log.Debug().Str("session_id", s.SessionID).Str("query_id", ans.QueryID).Msg("session: recorded exchange")
	return ans, nil
}

// Manager holds sessions by id.
type Manager struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(maxHistory int) *Manager {
	return &Manager{
		maxHistory: maxHistory,
		sessions:   map[string]*Session{},
	}
}

func (m *Manager) CreateSession() *Session {
	s := NewSession(m.maxHistory)
	m.mu.Lock()
	m.sessions[s.SessionID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "session %q", id)
	}
	return s, nil
}

// History returns the rendered history of id, or "" for an unknown session.
func (m *Manager) History(id string) string {
	s, err := m.Get(id)
	if err != nil {
		return ""
	}
	return s.History()
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
