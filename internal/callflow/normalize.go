package callflow

import "strings"

// Validation error codes reported by Normalize. A non-empty code list means
// the caller must discard the response and apply FailClosed.
const (
	CodeMissingNextPhase = "missing_next_phase"
	CodeInvalidSilent    = "invalid_silent"
	CodeInvalidSkipInput = "invalid_skip_input"
	CodeUntypedAction    = "untyped_action"
	CodeInvalidSay       = "invalid_spoken_text"
	CodeInvalidAudio     = "invalid_audio"
)

// audioPathMarker is the legacy convention where spoken text actually names
// a pre-recorded audio file.
const audioPathMarker = "audio:"

// legacyEndReason tags EndCall actions synthesized from the legacy
// "hangup with no action" shape.
const legacyEndReason = "legacy"

// Normalize coerces arbitrary handler output into a strict Response and
// reports contract violations as an error-code list. It never fails:
// malformed fields are defaulted and flagged, not thrown.
//
// current is the phase active before this turn; it is the next-phase
// default and the phase the fail-closed fallback stays in.
func Normalize(raw Raw, current Phase) (Response, []string) {
	var codes []string

	resp := Response{Hangup: raw.Hangup}

	resp.NextPhase = CanonicalPhase(raw.NextPhase)
	if !KnownPhase(resp.NextPhase) {
		// Absent and unresolvable next phases are equally unusable.
		codes = append(codes, CodeMissingNextPhase)
		resp.NextPhase = CanonicalPhase(current)
	}

	switch v := raw.Say.(type) {
	case nil:
		resp.Say = nil
	case string:
		resp.Say = &v
	default:
		codes = append(codes, CodeInvalidSay)
		resp.Say = nil
	}

	switch v := raw.Silent.(type) {
	case nil:
		resp.Silent = false
	case bool:
		resp.Silent = v
	default:
		codes = append(codes, CodeInvalidSilent)
		resp.Silent = false
	}

	switch v := raw.SkipInput.(type) {
	case nil:
		resp.SkipInput = false
	case bool:
		resp.SkipInput = v
	default:
		codes = append(codes, CodeInvalidSkipInput)
		resp.SkipInput = false
	}

	switch v := raw.Audio.(type) {
	case nil:
		resp.Audio = nil
	case string:
		resp.Audio = &v
	default:
		codes = append(codes, CodeInvalidAudio)
		resp.Audio = nil
	}

	resp.Action = raw.Action
	if resp.Action != nil && resp.Action.Type == "" {
		codes = append(codes, CodeUntypedAction)
		resp.Action = nil
	}

	// Legacy shape: a bare hangup with no action means "just end the call".
	if resp.Action == nil && resp.Hangup {
		resp.Action = EndCall(legacyEndReason)
	}

	// Legacy shape: spoken text carrying an audio-path marker.
	if resp.Say != nil && strings.HasPrefix(*resp.Say, audioPathMarker) {
		path := strings.TrimPrefix(*resp.Say, audioPathMarker)
		resp.Action = PlayAudio(path)
		resp.Say = nil
	}

	if resp.Action == nil {
		resp.Action = SetState(nil)
	}

	return resp, codes
}

// fallbackApology is the fixed fail-closed utterance for contract
// violations. The call stays in its current phase and keeps listening.
const fallbackApology = "I'm sorry, we're having a technical problem on our end. Could you say that again, please?"

// FailClosed builds the conservative response applied whenever a handler's
// output violates the contract. It never ends or crashes the call.
func FailClosed(current Phase) Response {
	say := fallbackApology
	return Response{
		Say:       &say,
		NextPhase: CanonicalPhase(current),
		Action:    SetState(nil),
	}
}
