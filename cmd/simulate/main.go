// Command simulate drives a call conversation on stdin/stdout: each line you
// type is one caller utterance, an empty line is silence. Delegated calls are
// served by a small in-process stub, so the whole flow runs without any
// external service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/internal/delegate"
	"github.com/clinivoice/callflow/pkg/logging"
)

func main() {
	logger := logging.New("error")

	dispatcher := callflow.NewDispatcher(logger,
		callflow.WithClinicName("San Martin Clinic"),
	)
	engine := callflow.NewEngine(callflow.EngineConfig{
		Store:      callflow.NewMemorySessionStore(),
		Dispatcher: dispatcher,
		Delegator:  delegate.NewFormatFallback(stubDelegator{}, logger),
		Logger:     logger,
	})

	callID := uuid.NewString()
	ctx := context.Background()

	resp, err := engine.Turn(ctx, callflow.TurnInput{
		SessionID: callID,
		From:      "+56911111111",
		Event:     callflow.EventCallStarted,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "turn failed:", err)
		os.Exit(1)
	}
	speak(resp)

	scanner := bufio.NewScanner(os.Stdin)
	for !resp.Hangup {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		resp, err = engine.Turn(ctx, callflow.TurnInput{
			SessionID:  callID,
			Transcript: scanner.Text(),
			Confidence: 1.0,
			Language:   "en",
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "turn failed:", err)
			os.Exit(1)
		}
		speak(resp)

		// SkipInput means the platform would call straight back without
		// listening; do the same here.
		for resp.SkipInput && !resp.Hangup {
			resp, err = engine.Turn(ctx, callflow.TurnInput{SessionID: callID})
			if err != nil {
				fmt.Fprintln(os.Stderr, "turn failed:", err)
				os.Exit(1)
			}
			speak(resp)
		}
	}

	if resp.Action != nil && resp.Action.Type == callflow.ActionEndCall {
		fmt.Printf("-- call ended (%s)\n", resp.Action.Reason)
	}
}

func speak(resp callflow.Response) {
	if resp.Say != nil {
		fmt.Printf("bot> %s\n", *resp.Say)
	}
}

// stubDelegator plays the business service: it accepts every well-formed ID
// (formatting is handled by the local fallback), knows one patient, and
// always has a slot two days out.
type stubDelegator struct{}

func (stubDelegator) Call(_ context.Context, req callflow.DelegateRequest) callflow.DelegateResult {
	switch req.Name {
	case callflow.DelegateValidatePatient:
		return callflow.DelegateResult{OK: true, Data: map[string]any{
			"ok": true, "found": true,
			"patient_name": "Alex", "patient_age": 34,
		}}
	case callflow.DelegateGetNextAvailability:
		starts := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Hour)
		requested, _ := req.Payload["requested_date"].(string)
		earliest, _ := req.Payload["earliest"].(bool)
		return callflow.DelegateResult{OK: true, Data: map[string]any{
			"ok":              true,
			"slot_id":         uuid.NewString(),
			"starts_at":       starts.Format(time.RFC3339),
			"professional":    "Dr. Rojas",
			"matches_request": earliest || requested == starts.Format("2006-01-02"),
		}}
	case callflow.DelegateConfirmAvailability, callflow.DelegateReleaseAvailability:
		return callflow.DelegateResult{OK: true, Data: map[string]any{"ok": true}}
	default:
		// FORMAT_ID lands here: the local fallback takes over.
		return callflow.DelegateResult{}
	}
}
