package callflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spoken(text string, phase Phase) Response {
	return Response{Say: &text, NextPhase: phase, Action: SetState(nil)}
}

func TestAntiReplaySuppressesDuplicatePair(t *testing.T) {
	sess := NewSession("call-1", "", "")

	first := spoken("Is that correct?", PhaseConfirmID)
	applyAntiReplay(sess, &first)
	require.NotNil(t, first.Say)
	assert.Equal(t, "Is that correct?", sess.LastEmitText)

	second := spoken("Is that correct?", PhaseConfirmID)
	applyAntiReplay(sess, &second)
	assert.Nil(t, second.Say)
	// Cache is left unchanged on suppression.
	assert.Equal(t, PhaseConfirmID, sess.LastEmitPhase)
	assert.Equal(t, "Is that correct?", sess.LastEmitText)
}

func TestAntiReplayDifferentPhaseSamePhrase(t *testing.T) {
	sess := NewSession("call-1", "", "")

	first := spoken("Is that correct?", PhaseConfirmID)
	applyAntiReplay(sess, &first)

	second := spoken("Is that correct?", PhaseConfirmAppointment)
	applyAntiReplay(sess, &second)
	require.NotNil(t, second.Say)
	assert.Equal(t, PhaseConfirmAppointment, sess.LastEmitPhase)
}

func TestAntiReplaySilentResponsesLeaveCacheAlone(t *testing.T) {
	sess := NewSession("call-1", "", "")

	first := spoken("Hello", PhaseWaitForID)
	applyAntiReplay(sess, &first)

	quiet := Response{NextPhase: PhaseWaitForID, Action: SetState(nil)}
	applyAntiReplay(sess, &quiet)
	assert.Equal(t, "Hello", sess.LastEmitText)

	// The cached pair still suppresses after an intervening silent turn.
	again := spoken("Hello", PhaseWaitForID)
	applyAntiReplay(sess, &again)
	assert.Nil(t, again.Say)
}
