package callflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinivoice/callflow/pkg/logging"
)

// scriptedDelegator answers each delegated call from a fixed result table
// and records every request it receives.
type scriptedDelegator struct {
	results map[string]DelegateResult
	calls   []DelegateRequest
}

func (s *scriptedDelegator) Call(_ context.Context, req DelegateRequest) DelegateResult {
	s.calls = append(s.calls, req)
	return s.results[req.Name]
}

func newTestEngine(del Delegator) (*Engine, *MemorySessionStore) {
	store := NewMemorySessionStore()
	eng := NewEngine(EngineConfig{
		Store:      store,
		Dispatcher: newTestDispatcher(),
		Delegator:  del,
		Logger:     logging.New("error"),
	})
	return eng, store
}

func say(t *testing.T, resp Response) string {
	t.Helper()
	require.NotNil(t, resp.Say)
	return *resp.Say
}

// Drives a complete call from greeting to hangup: ID capture, patient
// validation, specialty and date selection, availability lookup, booking.
func TestEngineFullBookingConversation(t *testing.T) {
	ctx := context.Background()
	del := &scriptedDelegator{results: map[string]DelegateResult{
		DelegateFormatID: {OK: true, Data: map[string]any{
			"ok": true, "body": "12345678", "check_digit": "5",
		}},
		DelegateValidatePatient: {OK: true, Data: map[string]any{
			"ok": true, "found": true,
			"patient_name": "Maria", "patient_age": float64(42),
		}},
		DelegateGetNextAvailability: {OK: true, Data: map[string]any{
			"ok": true, "slot_id": "slot-77",
			"starts_at":       "2026-09-02T10:30:00Z",
			"professional":    "Dr. Rojas",
			"matches_request": true,
		}},
		DelegateConfirmAvailability: {OK: true, Data: map[string]any{"ok": true}},
	}}
	eng, store := newTestEngine(del)

	// Turn 1: call starts, the greeting asks for the ID.
	resp, err := eng.Turn(ctx, TurnInput{SessionID: "call-1", From: "+56911111111"})
	require.NoError(t, err)
	assert.Contains(t, say(t, resp), "San Martin Clinic")
	assert.Equal(t, PhaseWaitForID, resp.NextPhase)

	// Turn 2: the spoken ID goes through formatting and comes back for
	// confirmation within the same turn.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1", Transcript: "one two three four five six seven eight five"})
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmID, resp.NextPhase)
	assert.Contains(t, say(t, resp), "six seven eight dash five")

	// Turn 3: confirming chains silently into patient validation and speaks
	// the validated patient's greeting.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1", Transcript: "yes"})
	require.NoError(t, err)
	assert.Equal(t, PhaseAskSpecialty, resp.NextPhase)
	assert.Contains(t, say(t, resp), "Maria")

	sess, err := store.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "12345678-5", sess.ConfirmedID)

	// Turn 4: specialty.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1", Transcript: "dermatology please"})
	require.NoError(t, err)
	assert.Equal(t, PhaseAskDate, resp.NextPhase)

	// Turn 5: date triggers the availability lookup and the offer.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1", Transcript: "tomorrow"})
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmAppointment, resp.NextPhase)
	assert.Contains(t, say(t, resp), "Dr. Rojas")

	// Turn 6: booking.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1", Transcript: "yes"})
	require.NoError(t, err)
	assert.Equal(t, PhaseGoodbye, resp.NextPhase)
	assert.Contains(t, say(t, resp), "you're booked")
	assert.True(t, resp.SkipInput)

	// Turn 7 and 8: goodbye, then the terminal end-call.
	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1"})
	require.NoError(t, err)
	assert.Equal(t, PhaseFinalize, resp.NextPhase)

	resp, err = eng.Turn(ctx, TurnInput{SessionID: "call-1"})
	require.NoError(t, err)
	assert.True(t, resp.Hangup)
	require.NotNil(t, resp.Action)
	assert.Equal(t, ActionEndCall, resp.Action.Type)
	assert.Equal(t, "completed", resp.Action.Reason)

	sess, err = store.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.True(t, sess.Confirmed)
	assert.Equal(t, PhaseComplete, sess.Phase)

	// The availability payload carried the session's captured state.
	var availReq *DelegateRequest
	for i := range del.calls {
		if del.calls[i].Name == DelegateGetNextAvailability {
			availReq = &del.calls[i]
		}
	}
	require.NotNil(t, availReq)
	assert.Equal(t, "12345678-5", availReq.Payload["patient_id"])
	assert.Equal(t, "dermatology", availReq.Payload["specialty"])
	assert.Equal(t, "2026-09-02", availReq.Payload["requested_date"])
}

// A delegated call with no delegator configured surfaces to the handler as
// failure, which here means the graduated ID re-prompt, not an error.
func TestEngineMissingDelegatorFailsClosed(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(nil)

	_, err := eng.Turn(ctx, TurnInput{SessionID: "call-2"})
	require.NoError(t, err)

	resp, err := eng.Turn(ctx, TurnInput{SessionID: "call-2", Transcript: "twelve million"})
	require.NoError(t, err)
	assert.Equal(t, PhaseWaitForID, resp.NextPhase)
	assert.Equal(t, idFormatReprompts[0], say(t, resp))
	assert.False(t, resp.Hangup)
}

// A handler emitting malformed output is replaced by the fixed apology in
// the same phase; the session is still persisted.
func TestEngineContractViolationFailsClosed(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(nil)

	eng.dispatcher.handlers[PhaseWaitForID] = func(TurnInput, *Session) Raw {
		return Raw{NextPhase: PhaseWaitForID, Say: 123, Silent: "oops"}
	}

	_, err := eng.Turn(ctx, TurnInput{SessionID: "call-3"})
	require.NoError(t, err)

	resp, err := eng.Turn(ctx, TurnInput{SessionID: "call-3", Transcript: "hello"})
	require.NoError(t, err)
	assert.Equal(t, fallbackApology, say(t, resp))
	assert.Equal(t, PhaseWaitForID, resp.NextPhase)
	assert.False(t, resp.Hangup)
	assert.Equal(t, ActionSetState, resp.Action.Type)

	sess, err := store.Get(ctx, "call-3")
	require.NoError(t, err)
	assert.Equal(t, PhaseWaitForID, sess.Phase)
}

// A handler that keeps requesting delegations in one turn is cut off at the
// per-turn bound and the call is terminated.
func TestEngineDelegationOverflow(t *testing.T) {
	ctx := context.Background()
	del := &scriptedDelegator{results: map[string]DelegateResult{
		"LOOP": {OK: true},
	}}
	eng, _ := newTestEngine(del)

	eng.dispatcher.handlers[PhaseWaitForID] = func(TurnInput, *Session) Raw {
		return Raw{NextPhase: PhaseWaitForID, Action: WebhookAction("LOOP", nil)}
	}

	_, err := eng.Turn(ctx, TurnInput{SessionID: "call-4"})
	require.NoError(t, err)

	resp, err := eng.Turn(ctx, TurnInput{SessionID: "call-4", Transcript: "hello"})
	require.NoError(t, err)
	assert.True(t, resp.Hangup)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "delegation-overflow", resp.Action.Reason)
	assert.Len(t, del.calls, maxDelegationsPerTurn)
}

// A failed validation lookup ends the call with a machine-readable reason.
func TestEngineValidationUnavailableTerminates(t *testing.T) {
	ctx := context.Background()
	del := &scriptedDelegator{results: map[string]DelegateResult{
		DelegateFormatID: {OK: true, Data: map[string]any{
			"ok": true, "body": "12345678", "check_digit": "5",
		}},
		// VALIDATE_PATIENT absent: the zero result is OK=false.
	}}
	eng, store := newTestEngine(del)

	_, err := eng.Turn(ctx, TurnInput{SessionID: "call-5"})
	require.NoError(t, err)
	_, err = eng.Turn(ctx, TurnInput{SessionID: "call-5", Transcript: "one two three four five six seven eight five"})
	require.NoError(t, err)

	resp, err := eng.Turn(ctx, TurnInput{SessionID: "call-5", Transcript: "yes"})
	require.NoError(t, err)
	assert.True(t, resp.Hangup)
	require.NotNil(t, resp.Action)
	assert.Equal(t, ActionEndCall, resp.Action.Type)
	assert.Equal(t, "validation-unavailable", resp.Action.Reason)

	sess, err := store.Get(ctx, "call-5")
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, sess.Phase)
	assert.Equal(t, "validation-unavailable", sess.EndReason)
}

// The anti-replay guard suppresses an identical (phase, text) emission when
// a turn would repeat the previous one verbatim.
func TestEngineSuppressesVerbatimRepeat(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(nil)

	canned := "please hold on"
	eng.dispatcher.handlers[PhaseWaitForID] = func(TurnInput, *Session) Raw {
		return Raw{NextPhase: PhaseWaitForID, Say: canned}
	}

	_, err := eng.Turn(ctx, TurnInput{SessionID: "call-6"})
	require.NoError(t, err)

	first, err := eng.Turn(ctx, TurnInput{SessionID: "call-6", Transcript: "hello"})
	require.NoError(t, err)
	assert.Equal(t, canned, say(t, first))

	second, err := eng.Turn(ctx, TurnInput{SessionID: "call-6", Transcript: "hello again"})
	require.NoError(t, err)
	assert.Nil(t, second.Say)
}
