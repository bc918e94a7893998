package toolloop

// OutcomeKind tags the result of one stage of the loop.
type OutcomeKind int

const (
	// OutcomeAnswered means the model produced its final text.
	OutcomeAnswered OutcomeKind = iota
	// OutcomeToolsExecuted means the requested tools ran and their results
	// were appended to the chain.
	OutcomeToolsExecuted
	// OutcomeFailed means the stage could not complete. Err holds the cause.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAnswered:
		return "answered"
	case OutcomeToolsExecuted:
		return "tools-executed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type RoundOutcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

func answered(text string) RoundOutcome {
	return RoundOutcome{Kind: OutcomeAnswered, Text: text}
}

func toolsExecuted() RoundOutcome {
	return RoundOutcome{Kind: OutcomeToolsExecuted}
}

func failed(err error) RoundOutcome {
	return RoundOutcome{Kind: OutcomeFailed, Err: err}
}
