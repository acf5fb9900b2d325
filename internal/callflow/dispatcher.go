package callflow

import (
	"time"

	"github.com/clinivoice/callflow/pkg/logging"
)

// Handler consumes one turn for one phase and produces raw, possibly
// malformed, output. Handlers are synchronous and free of I/O: external
// effects are requested through a Webhook action and delivered back as a
// continuation turn.
type Handler func(in TurnInput, sess *Session) Raw

// maxSilentHops bounds same-turn silent chaining so a miswired phase graph
// cannot spin inside one dispatch.
const maxSilentHops = 6

// Dispatcher maps the session's current phase to its handler, commits phase
// transitions, and executes same-turn silent chains.
type Dispatcher struct {
	handlers   map[Phase]Handler
	classifier Classifier
	now        func() time.Time
	clinicName string
	logger     *logging.Logger
}

// DispatcherOption customizes dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithClassifier overrides the default keyword intent classifier.
func WithClassifier(c Classifier) DispatcherOption {
	return func(d *Dispatcher) {
		if c != nil {
			d.classifier = c
		}
	}
}

// WithClock overrides the wall clock, used by date parsing.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithClinicName sets the clinic name spoken in the greeting.
func WithClinicName(name string) DispatcherOption {
	return func(d *Dispatcher) {
		d.clinicName = name
	}
}

// NewDispatcher builds a dispatcher with the full phase handler registry.
func NewDispatcher(logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		classifier: NewKeywordClassifier(),
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[Phase]Handler{
		PhaseStartGreeting:      d.handleStartGreeting,
		PhaseWaitForID:          d.handleWaitForID,
		PhaseConfirmID:          d.handleConfirmID,
		PhaseValidatePatient:    d.handleValidatePatient,
		PhaseAskSpecialty:       d.handleAskSpecialty,
		PhaseParseSpecialty:     d.handleParseSpecialty,
		PhaseAskDate:            d.handleAskDate,
		PhaseCheckAvailability:  d.handleCheckAvailability,
		PhaseOfferAltIntro:      d.handleOfferAltIntro,
		PhaseOfferAltWait:       d.handleOfferAltWait,
		PhaseInformAvailability: d.handleInformAvailability,
		PhaseConfirmAppointment: d.handleConfirmAppointment,
		PhaseGoodbye:            d.handleGoodbye,
		PhaseFinalize:           d.handleFinalize,
		PhaseComplete:           d.handleComplete,
		PhaseFailed:             d.handleFailed,
	}
	return d
}

// Dispatch runs the handler for the session's current phase, commits the
// resulting transition, and immediately follows silent transitions within
// the same call so no round trip is wasted on a turn with no spoken output.
// A Webhook action always breaks the chain: delegation belongs to the
// boundary, not the dispatcher.
func (d *Dispatcher) Dispatch(in TurnInput, sess *Session) Raw {
	var raw Raw
	for hop := 0; hop < maxSilentHops; hop++ {
		phase := CanonicalPhase(sess.Phase)
		handler, ok := d.handlers[phase]
		if !ok {
			d.logger.Error("dispatch: no handler for phase",
				"session_id", sess.ID,
				"phase", string(sess.Phase),
			)
			sess.EndReason = "unknown-phase"
			sess.Phase = PhaseFailed
			return Raw{
				Say:       promptEscalation,
				NextPhase: PhaseFailed,
				Action:    EndCall("unknown-phase"),
				Hangup:    true,
			}
		}

		raw = handler(in, sess)

		next := CanonicalPhase(raw.NextPhase)
		if next == "" {
			next = phase
		}
		if next != phase {
			d.logger.Info("phase transition",
				"session_id", sess.ID,
				"from", string(phase),
				"to", string(next),
			)
			sess.Phase = next
		}

		if !d.chainable(raw, phase, next) {
			return raw
		}
		// Re-enter the new phase within the same turn. The transcript is
		// preserved (parse phases need it); the event tag marks the hop as
		// synthetic.
		in.Event = EventPhaseEntered
	}

	d.logger.Error("dispatch: silent chain exceeded hop limit",
		"session_id", sess.ID,
		"phase", string(sess.Phase),
	)
	sess.EndReason = "phase-loop"
	sess.Phase = PhaseFailed
	return Raw{
		Say:       promptEscalation,
		NextPhase: PhaseFailed,
		Action:    EndCall("phase-loop"),
		Hangup:    true,
	}
}

// chainable reports whether the handler marked this transition for same-turn
// execution.
func (d *Dispatcher) chainable(raw Raw, from, to Phase) bool {
	silent, _ := raw.Silent.(bool)
	if !silent || to == from || to.Terminal() {
		return false
	}
	if raw.Action != nil && raw.Action.Type != ActionSetState {
		return false
	}
	return true
}

// listenFailure applies the uniform escalation policy for a listening phase:
// graduated re-prompts up to the phase's threshold, then exactly one
// terminal fallback. The counter increments at most once per turn.
func (d *Dispatcher) listenFailure(sess *Session, phase Phase, cap int, prompts []string, fallback func(attempt int) Raw) Raw {
	n := sess.bumpAttempt(phase)
	if n >= cap {
		d.logger.Warn("escalation threshold reached",
			"session_id", sess.ID,
			"phase", string(phase),
			"attempts", n,
		)
		return fallback(n)
	}
	idx := n - 1
	if idx >= len(prompts) {
		idx = len(prompts) - 1
	}
	return Raw{Say: prompts[idx], NextPhase: phase}
}

// terminalFailure ends the call through the failed phase with an escalation
// message and a machine-readable reason code.
func (d *Dispatcher) terminalFailure(sess *Session, reason, say string) Raw {
	if say == "" {
		say = promptEscalation
	}
	sess.EndReason = reason
	return Raw{
		Say:       say,
		NextPhase: PhaseFailed,
		Action:    EndCall(reason),
		Hangup:    true,
	}
}
