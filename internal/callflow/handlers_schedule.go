package callflow

import "time"

const (
	askSpecialtyCap = 3
	askDateCap      = 2
	offerAltCap     = 2
)

// handleAskSpecialty screens for silence, then hands the utterance to the
// parse phase within the same turn.
func (d *Dispatcher) handleAskSpecialty(in TurnInput, sess *Session) Raw {
	if in.silence() {
		return d.listenFailure(sess, PhaseAskSpecialty, askSpecialtyCap, specialtyReprompts, func(int) Raw {
			return d.terminalFailure(sess, "specialty-unresolved", "")
		})
	}
	return Raw{
		NextPhase: PhaseParseSpecialty,
		Silent:    true,
	}
}

// handleParseSpecialty matches the utterance against the specialty catalog.
// Failures escalate the ask_specialty counter: parsing is part of the same
// listening phase, so the one-increment-per-turn invariant holds.
func (d *Dispatcher) handleParseSpecialty(in TurnInput, sess *Session) Raw {
	specialty, ok := matchSpecialty(in.Transcript)
	if !ok {
		return d.listenFailure(sess, PhaseAskSpecialty, askSpecialtyCap, specialtyReprompts, func(int) Raw {
			return d.terminalFailure(sess, "specialty-unresolved", "")
		})
	}
	sess.Specialty = specialty
	sess.resetAttempt(PhaseAskSpecialty)
	return Raw{
		Say:       promptAskDate(specialty),
		NextPhase: PhaseAskDate,
	}
}

// handleAskDate parses the requested day. After the threshold an
// unrecognized answer substitutes the deterministic default: earliest
// available.
func (d *Dispatcher) handleAskDate(in TurnInput, sess *Session) Raw {
	toAvailability := func() Raw {
		sess.resetAttempt(PhaseAskDate)
		return Raw{
			NextPhase: PhaseCheckAvailability,
			Silent:    true,
		}
	}

	when, earliest, ok := parseDatePhrase(in.Transcript, d.now())
	if !ok {
		return d.listenFailure(sess, PhaseAskDate, askDateCap, dateReprompts, func(int) Raw {
			sess.EarliestRequested = true
			sess.RequestedDate = ""
			return toAvailability()
		})
	}

	if earliest {
		sess.EarliestRequested = true
		sess.RequestedDate = ""
	} else {
		sess.EarliestRequested = false
		sess.RequestedDate = formatDate(when)
	}
	return toAvailability()
}

// handleCheckAvailability asks the scheduling service for a slot. The
// lookup places a tentative hold, so every path away from the offer either
// confirms or releases it.
func (d *Dispatcher) handleCheckAvailability(in TurnInput, sess *Session) Raw {
	if !in.continuation(DelegateGetNextAvailability) {
		return Raw{
			NextPhase: PhaseCheckAvailability,
			Action: WebhookAction(DelegateGetNextAvailability, map[string]any{
				"patient_id":     sess.ConfirmedID,
				"specialty":      sess.Specialty,
				"requested_date": sess.RequestedDate,
				"earliest":       sess.EarliestRequested,
			}),
		}
	}

	res := in.Delegate.Result
	if !res.OK {
		return d.terminalFailure(sess, "availability-unavailable", "")
	}

	slotID := res.Str("slot_id")
	if slotID == "" {
		return d.terminalFailure(sess, "no-availability", promptNoAvailability(sess.Specialty))
	}

	startsAt, err := time.Parse(time.RFC3339, res.Str("starts_at"))
	if err != nil {
		// A slot without a parsable time is unusable.
		return d.terminalFailure(sess, "availability-unavailable", "")
	}

	sess.OfferedSlot = &Slot{
		SlotID:       slotID,
		StartsAt:     startsAt,
		Professional: res.Str("professional"),
		Specialty:    sess.Specialty,
	}

	matches := sess.EarliestRequested || res.Bool("matches_request")
	if matches {
		return Raw{
			NextPhase: PhaseInformAvailability,
			Silent:    true,
		}
	}
	return Raw{
		NextPhase: PhaseOfferAltIntro,
		Silent:    true,
	}
}

// handleInformAvailability speaks the offered slot and moves to
// confirmation.
func (d *Dispatcher) handleInformAvailability(_ TurnInput, sess *Session) Raw {
	if sess.OfferedSlot == nil {
		return d.terminalFailure(sess, "availability-unavailable", "")
	}
	return Raw{
		Say:       promptOfferSlot(sess.OfferedSlot),
		NextPhase: PhaseConfirmAppointment,
	}
}

// handleOfferAltIntro presents the nearest alternative when the requested
// day had no openings.
func (d *Dispatcher) handleOfferAltIntro(_ TurnInput, sess *Session) Raw {
	if sess.OfferedSlot == nil {
		return d.terminalFailure(sess, "availability-unavailable", "")
	}
	return Raw{
		Say:       promptOfferAlternative(sess.OfferedSlot),
		NextPhase: PhaseOfferAltWait,
	}
}

// handleOfferAltWait interprets the caller's answer to the alternative
// offer. Accepting chains straight into the booking confirmation; declining
// releases the held slot and ends the call politely.
func (d *Dispatcher) handleOfferAltWait(in TurnInput, sess *Session) Raw {
	if in.continuation(DelegateReleaseAvailability) {
		return d.afterRelease(sess)
	}

	switch d.classifier.Classify(in.Transcript) {
	case IntentYes:
		sess.resetAttempt(PhaseOfferAltWait)
		return Raw{
			NextPhase: PhaseConfirmAppointment,
			Silent:    true,
		}
	case IntentNo:
		sess.EndReason = "caller-declined"
		return d.releaseSlot(sess, PhaseOfferAltWait)
	default:
		return d.listenFailure(sess, PhaseOfferAltWait, offerAltCap, alternativeReprompts, func(int) Raw {
			sess.EndReason = "alternatives-unresolved"
			return d.releaseSlot(sess, PhaseOfferAltWait)
		})
	}
}
