package toolloop

import (
	"time"

	"github.com/go-go-golems/coursebot/pkg/inference/tools"
)

// ToolInvocation records one tool call attempt.
type ToolInvocation struct {
	ToolName     string    `json:"tool_name"`
	ToolCallID   string    `json:"tool_call_id"`
	ResultLength int       `json:"result_length"`
	Succeeded    bool      `json:"succeeded"`
	Timestamp    time.Time `json:"timestamp"`
}

type ErrorRecord struct {
	Round     int       `json:"round"`
	ToolName  string    `json:"tool_name,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoundState tracks the rounds of a single query. It is created when the
// query starts, mutated by the loop only, and dropped when the query returns.
type RoundState struct {
	Round              int                `json:"round"`
	TotalToolsExecuted int                `json:"total_tools_executed"`
	ToolsPerRound      [][]ToolInvocation `json:"tools_per_round"`
	Errors             []ErrorRecord      `json:"errors"`
	Sources            []tools.Source     `json:"sources"`

	seen map[tools.SourceKey]struct{}
	now  func() time.Time
}

func NewRoundState() *RoundState {
	return &RoundState{
		seen: map[tools.SourceKey]struct{}{},
		now:  time.Now,
	}
}

// StartRound advances to the next round and returns its number.
func (s *RoundState) StartRound() int {
	s.Round++
	s.ToolsPerRound = append(s.ToolsPerRound, nil)
	return s.Round
}

// Started reports whether at least one round has begun.
func (s *RoundState) Started() bool {
	return s.Round > 0
}

// RecordInvocation adds an invocation to the current round.
func (s *RoundState) RecordInvocation(toolName, toolCallID string, resultLength int, succeeded bool) {
	if len(s.ToolsPerRound) == 0 {
		s.ToolsPerRound = append(s.ToolsPerRound, nil)
	}
	last := len(s.ToolsPerRound) - 1
	s.ToolsPerRound[last] = append(s.ToolsPerRound[last], ToolInvocation{
		ToolName:     toolName,
		ToolCallID:   toolCallID,
		ResultLength: resultLength,
		Succeeded:    succeeded,
		Timestamp:    s.now(),
	})
	s.TotalToolsExecuted++
}

func (s *RoundState) RecordError(toolName, message string) {
	s.Errors = append(s.Errors, ErrorRecord{
		Round:     s.Round,
		ToolName:  toolName,
		Message:   message,
		Timestamp: s.now(),
	})
}

// MergeSources adds the sources whose key has not been seen in this query,
// tagged with the current round, and returns the ones that were added. The
// first discovery of a key wins.
func (s *RoundState) MergeSources(sources []tools.Source) []tools.Source {
	if s.seen == nil {
		s.seen = map[tools.SourceKey]struct{}{}
	}
	var added []tools.Source
	for _, src := range sources {
		key := src.Key()
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		src.DiscoveredInRound = s.Round
		s.Sources = append(s.Sources, src)
		added = append(added, src)
	}
	return added
}

// FailedInvocations counts unsuccessful tool calls over all rounds.
func (s *RoundState) FailedInvocations() int {
	n := 0
	for _, round := range s.ToolsPerRound {
		for _, inv := range round {
			if !inv.Succeeded {
				n++
			}
		}
	}
	return n
}
