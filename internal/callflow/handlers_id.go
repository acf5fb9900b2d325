package callflow

import (
	"fmt"

	"github.com/clinivoice/callflow/internal/natid"
)

// Escalation thresholds per listening phase. Attempt 1 and 2 issue
// graduated re-prompts; reaching the threshold triggers the phase's
// terminal fallback.
const (
	waitForIDCap = 3
	confirmIDCap = 3
)

func (d *Dispatcher) handleStartGreeting(_ TurnInput, _ *Session) Raw {
	return Raw{
		Say:       promptGreeting(d.clinicName),
		NextPhase: PhaseWaitForID,
	}
}

// handleWaitForID captures the caller's national ID. A spoken utterance is
// sent through the FORMAT_ID delegate for normalization; the checksum is
// verified locally on the continuation.
func (d *Dispatcher) handleWaitForID(in TurnInput, sess *Session) Raw {
	if in.continuation(DelegateFormatID) {
		return d.handleFormatIDResult(in, sess)
	}

	if in.silence() {
		return d.listenFailure(sess, PhaseWaitForID, waitForIDCap, idReprompts, func(int) Raw {
			return d.terminalFailure(sess, "silence-exhausted", promptSilenceGoodbye())
		})
	}

	return Raw{
		NextPhase: PhaseWaitForID,
		Action: WebhookAction(DelegateFormatID, map[string]any{
			"text": in.Transcript,
		}),
	}
}

func (d *Dispatcher) handleFormatIDResult(in TurnInput, sess *Session) Raw {
	res := in.Delegate.Result

	if !res.OK {
		return d.listenFailure(sess, PhaseWaitForID, waitForIDCap, idFormatReprompts, func(int) Raw {
			return d.terminalFailure(sess, "id-unrecoverable", "")
		})
	}

	body := res.Str("body")
	check := res.Str("check_digit")
	if !natid.Validate(body, check) {
		return d.listenFailure(sess, PhaseWaitForID, waitForIDCap,
			[]string{promptIDInvalid(), idReprompts[1]},
			func(int) Raw {
				return d.terminalFailure(sess, "id-unrecoverable", "")
			})
	}

	sess.IDBody = body
	sess.IDCheckDigit = check
	sess.resetAttempt(PhaseWaitForID)
	return Raw{
		Say:       promptConfirmID(natid.MaskedReading(body, check)),
		NextPhase: PhaseConfirmID,
	}
}

// handleConfirmID reads the captured ID back and waits for a yes or no.
// After the threshold an ambiguous answer counts as implicit confirmation
// rather than re-prompting forever.
func (d *Dispatcher) handleConfirmID(in TurnInput, sess *Session) Raw {
	switch d.classifier.Classify(in.Transcript) {
	case IntentYes:
		return d.acceptID(sess)
	case IntentNo:
		sess.IDBody = ""
		sess.IDCheckDigit = ""
		sess.resetAttempt(PhaseConfirmID)
		return Raw{
			Say:       promptRetryID(),
			NextPhase: PhaseWaitForID,
		}
	default:
		return d.listenFailure(sess, PhaseConfirmID, confirmIDCap, confirmIDReprompts, func(int) Raw {
			return d.acceptID(sess)
		})
	}
}

func (d *Dispatcher) acceptID(sess *Session) Raw {
	sess.ConfirmedID = fmt.Sprintf("%s-%s", sess.IDBody, sess.IDCheckDigit)
	sess.resetAttempt(PhaseConfirmID)
	return Raw{
		NextPhase: PhaseValidatePatient,
		Silent:    true,
	}
}

// handleValidatePatient looks the confirmed ID up in the patient records.
// Entered silently, so the first invocation issues the delegated call and
// the continuation speaks.
func (d *Dispatcher) handleValidatePatient(in TurnInput, sess *Session) Raw {
	if !in.continuation(DelegateValidatePatient) {
		return Raw{
			NextPhase: PhaseValidatePatient,
			Action: WebhookAction(DelegateValidatePatient, map[string]any{
				"patient_id": sess.ConfirmedID,
			}),
		}
	}

	res := in.Delegate.Result
	if !res.OK {
		return d.terminalFailure(sess, "validation-unavailable", "")
	}
	if !res.Bool("found") {
		return d.terminalFailure(sess, "patient-not-found", promptPatientNotFound())
	}

	sess.PatientName = res.Str("patient_name")
	sess.PatientAge = res.Int("patient_age")
	return Raw{
		Say:       promptAskSpecialty(sess.PatientName),
		NextPhase: PhaseAskSpecialty,
	}
}
