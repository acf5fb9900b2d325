// Package callflow implements the turn-based conversation engine behind the
// automated appointment line: a phase dispatcher, per-phase handlers, a
// delegation gateway for external business calls, and a fail-closed response
// contract.
package callflow

// Phase names a state of the conversation. The handler registered for the
// session's current phase decides what is spoken next and where the call
// moves.
type Phase string

const (
	PhaseStartGreeting      Phase = "start_greeting"
	PhaseWaitForID          Phase = "wait_for_id"
	PhaseConfirmID          Phase = "confirm_id"
	PhaseValidatePatient    Phase = "validate_patient"
	PhaseAskSpecialty       Phase = "ask_specialty"
	PhaseParseSpecialty     Phase = "parse_specialty"
	PhaseAskDate            Phase = "ask_date"
	PhaseCheckAvailability  Phase = "check_availability"
	PhaseOfferAltIntro      Phase = "offer_alternatives_intro"
	PhaseOfferAltWait       Phase = "offer_alternatives_wait"
	PhaseInformAvailability Phase = "inform_availability"
	PhaseConfirmAppointment Phase = "confirm_appointment"
	PhaseGoodbye            Phase = "goodbye"
	PhaseFinalize           Phase = "finalize"
	PhaseComplete           Phase = "complete"
	PhaseFailed             Phase = "failed"
)

// phaseAliases maps legacy phase names still emitted by older transport
// configurations onto their canonical equivalents.
var phaseAliases = map[Phase]Phase{
	"greeting":    PhaseStartGreeting,
	"waiting_id":  PhaseWaitForID,
	"wait_rut":    PhaseWaitForID,
	"waiting_rut": PhaseWaitForID,
	"error":       PhaseFailed,
}

// CanonicalPhase resolves legacy aliases. Unknown names pass through
// unchanged; the dispatcher turns them into a terminal error.
func CanonicalPhase(p Phase) Phase {
	if canonical, ok := phaseAliases[p]; ok {
		return canonical
	}
	return p
}

// Terminal reports whether the phase ends the conversation.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// knownPhases is the set of canonical phases with registered handlers.
var knownPhases = map[Phase]bool{
	PhaseStartGreeting:      true,
	PhaseWaitForID:          true,
	PhaseConfirmID:          true,
	PhaseValidatePatient:    true,
	PhaseAskSpecialty:       true,
	PhaseParseSpecialty:     true,
	PhaseAskDate:            true,
	PhaseCheckAvailability:  true,
	PhaseOfferAltIntro:      true,
	PhaseOfferAltWait:       true,
	PhaseInformAvailability: true,
	PhaseConfirmAppointment: true,
	PhaseGoodbye:            true,
	PhaseFinalize:           true,
	PhaseComplete:           true,
	PhaseFailed:             true,
}

// KnownPhase reports whether p (after alias resolution) names a real phase.
func KnownPhase(p Phase) bool {
	return knownPhases[CanonicalPhase(p)]
}
