package callflow

// Synthetic event tags carried by turn inputs that were not produced by a
// caller utterance.
const (
	// EventCallStarted marks the first turn of a call.
	EventCallStarted = "call_started"
	// EventDelegateResult marks the continuation turn injected by the
	// gateway after a delegated call returns.
	EventDelegateResult = "delegate_result"
	// EventPhaseEntered marks a same-turn silent re-dispatch into a phase.
	EventPhaseEntered = "phase_entered"
)

// TurnInput is one utterance or event delivered by the transport. Ephemeral:
// consumed by the dispatch pipeline, never persisted.
type TurnInput struct {
	SessionID string
	// Transcript is the recognized caller speech; empty means silence.
	Transcript string
	From       string
	To         string
	Confidence float64
	Language   string

	// Event is a synthetic event tag, empty for ordinary utterances.
	Event string
	// Delegate carries the delegated-call result when Event is
	// EventDelegateResult.
	Delegate *DelegateOutcome
}

// silence reports whether this turn carries no caller speech.
func (in TurnInput) silence() bool {
	return in.Transcript == ""
}

// continuation reports whether this input is the continuation of the named
// delegated call.
func (in TurnInput) continuation(name string) bool {
	return in.Event == EventDelegateResult && in.Delegate != nil && in.Delegate.Name == name
}
