package callflow

const confirmApptCap = 3

// handleConfirmAppointment books or releases the offered slot based on the
// caller's answer. Booking and releasing both go through the gateway;
// the continuation decides what is spoken.
func (d *Dispatcher) handleConfirmAppointment(in TurnInput, sess *Session) Raw {
	if in.continuation(DelegateConfirmAvailability) {
		return d.handleBookingResult(in, sess)
	}
	if in.continuation(DelegateReleaseAvailability) {
		return d.afterRelease(sess)
	}
	if sess.OfferedSlot == nil {
		return d.terminalFailure(sess, "availability-unavailable", "")
	}

	switch d.classifier.Classify(in.Transcript) {
	case IntentYes:
		sess.resetAttempt(PhaseConfirmAppointment)
		return Raw{
			NextPhase: PhaseConfirmAppointment,
			Action: WebhookAction(DelegateConfirmAvailability, map[string]any{
				"slot_id":    sess.OfferedSlot.SlotID,
				"patient_id": sess.ConfirmedID,
			}),
		}
	case IntentNo:
		sess.EndReason = "caller-declined"
		return d.releaseSlot(sess, PhaseConfirmAppointment)
	default:
		return d.listenFailure(sess, PhaseConfirmAppointment, confirmApptCap, confirmApptReprompts, func(int) Raw {
			sess.EndReason = "confirmation-unresolved"
			return d.releaseSlot(sess, PhaseConfirmAppointment)
		})
	}
}

func (d *Dispatcher) handleBookingResult(in TurnInput, sess *Session) Raw {
	res := in.Delegate.Result
	if !res.OK {
		return d.terminalFailure(sess, "booking-failed", "")
	}
	sess.Confirmed = true
	sess.EndReason = "completed"
	sess.resetAttempt(PhaseConfirmAppointment)
	return Raw{
		Say:       promptBooked(sess.OfferedSlot),
		NextPhase: PhaseGoodbye,
		SkipInput: true,
	}
}

// releaseSlot asks the scheduling service to drop the tentative hold. The
// continuation lands back in the issuing phase, which routes it through
// afterRelease.
func (d *Dispatcher) releaseSlot(sess *Session, stay Phase) Raw {
	var slotID string
	if sess.OfferedSlot != nil {
		slotID = sess.OfferedSlot.SlotID
	}
	return Raw{
		NextPhase: stay,
		Action: WebhookAction(DelegateReleaseAvailability, map[string]any{
			"slot_id":    slotID,
			"patient_id": sess.ConfirmedID,
		}),
	}
}

// afterRelease decides how the call ends once the hold is dropped. The
// release result itself is ignored: even a failed release must not keep the
// caller on the line.
func (d *Dispatcher) afterRelease(sess *Session) Raw {
	sess.OfferedSlot = nil
	if sess.EndReason == "caller-declined" {
		return Raw{
			Say:       promptDeclined(),
			NextPhase: PhaseGoodbye,
			SkipInput: true,
		}
	}
	reason := sess.EndReason
	if reason == "" {
		reason = "confirmation-unresolved"
	}
	return d.terminalFailure(sess, reason, "")
}

func (d *Dispatcher) handleGoodbye(_ TurnInput, _ *Session) Raw {
	return Raw{
		Say:       promptGoodbye(),
		NextPhase: PhaseFinalize,
		SkipInput: true,
	}
}

func (d *Dispatcher) handleFinalize(_ TurnInput, sess *Session) Raw {
	reason := sess.EndReason
	if reason == "" {
		reason = "completed"
	}
	return Raw{
		NextPhase: PhaseComplete,
		Action:    EndCall(reason),
		Hangup:    true,
	}
}

// Terminal phases answer any stray turn with the same end-call action so a
// transport retry cannot revive the conversation.
func (d *Dispatcher) handleComplete(_ TurnInput, sess *Session) Raw {
	reason := sess.EndReason
	if reason == "" {
		reason = "completed"
	}
	return Raw{NextPhase: PhaseComplete, Action: EndCall(reason), Hangup: true}
}

func (d *Dispatcher) handleFailed(_ TurnInput, sess *Session) Raw {
	reason := sess.EndReason
	if reason == "" {
		reason = "failed"
	}
	return Raw{NextPhase: PhaseFailed, Action: EndCall(reason), Hangup: true}
}
