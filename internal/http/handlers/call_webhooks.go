package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/pkg/logging"
)

// CallEvent is the JSON body posted by the telephony platform on every turn
// of a call: one utterance (or silence) from the caller.
type CallEvent struct {
	// Event identifies the webhook event, e.g. "call_started" or
	// "speech_recognized".
	Event string `json:"event"`
	// CallID groups turns within a single call.
	CallID string `json:"call_id"`
	// From is the caller's phone number (E.164).
	From string `json:"from,omitempty"`
	// To is the clinic number that received the call (E.164).
	To string `json:"to,omitempty"`
	// Text is the recognized caller speech; empty means silence.
	Text string `json:"text,omitempty"`
	// Confidence is the recognizer's confidence in Text.
	Confidence float64 `json:"confidence,omitempty"`
	// Language is the recognition language tag.
	Language string `json:"language,omitempty"`
}

// turnEngine is the conversation engine surface the handler needs.
type turnEngine interface {
	Turn(ctx context.Context, in callflow.TurnInput) (callflow.Response, error)
}

// CallWebhookHandler handles telephony webhook events. It is a thin channel
// adapter: it maps the wire event onto a turn input, runs the engine, and
// returns the normalized response for the platform to speak and act on.
type CallWebhookHandler struct {
	engine turnEngine
	logger *logging.Logger
}

// NewCallWebhookHandler creates a new CallWebhookHandler.
func NewCallWebhookHandler(engine turnEngine, logger *logging.Logger) *CallWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CallWebhookHandler{engine: engine, logger: logger}
}

// HandleTurn is the HTTP handler for POST /webhooks/call.
func (h *CallWebhookHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Error("call webhook: failed to read body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var event CallEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("call webhook: failed to parse event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if event.CallID == "" {
		h.logger.Warn("call webhook: missing call_id")
		http.Error(w, "call_id required", http.StatusBadRequest)
		return
	}

	h.logger.Info("call webhook: received event",
		"event", event.Event,
		"call_id", event.CallID,
		"from", event.From,
	)

	in := callflow.TurnInput{
		SessionID:  event.CallID,
		Transcript: strings.TrimSpace(event.Text),
		From:       event.From,
		To:         event.To,
		Confidence: event.Confidence,
		Language:   event.Language,
	}
	if event.Event == callflow.EventCallStarted {
		in.Event = callflow.EventCallStarted
	}

	resp, err := h.engine.Turn(ctx, in)
	if err != nil {
		h.logger.Error("call webhook: turn failed",
			"call_id", event.CallID,
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("call webhook: failed to write response",
			"call_id", event.CallID,
			"error", err,
		)
	}
}
