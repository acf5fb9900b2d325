package callflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinivoice/callflow/internal/observability/metrics"
	"github.com/clinivoice/callflow/pkg/logging"
)

const (
	// delegateTimeout bounds every delegated external call. On expiry the
	// call is unconditionally treated as failure; no partial results, no
	// background retry.
	delegateTimeout = 5 * time.Second

	// maxDelegationsPerTurn bounds how many delegated calls one external
	// turn may chain (e.g. a release followed by the terminal end-call).
	maxDelegationsPerTurn = 3
)

var engineTracer = otel.Tracer("callflow.internal.engine")

// Engine is the boundary component around the dispatcher: it owns session
// persistence, the delegation gateway, contract enforcement, and the
// anti-replay guard. One Turn call handles exactly one transport
// request/response cycle.
type Engine struct {
	store      SessionStore
	dispatcher *Dispatcher
	delegator  Delegator
	logger     *logging.Logger
	metrics    *metrics.CallMetrics
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Store      SessionStore
	Dispatcher *Dispatcher
	Delegator  Delegator
	Logger     *logging.Logger
	Metrics    *metrics.CallMetrics
}

// NewEngine builds the turn pipeline. Store and Dispatcher are required;
// Delegator may be nil only when no handler ever requests a delegated call
// (every delegation then fails closed).
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		delegator:  cfg.Delegator,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// Turn drives one full turn: load session, dispatch, run the delegation
// continuation loop, normalize and validate the output, apply the
// anti-replay guard, persist, respond.
//
// Expected failures never escape: contract violations fail closed and
// delegate failures surface to handlers as OK=false. A genuinely unexpected
// fault (panic) is logged and re-raised so the surrounding platform can
// hand the call to a human operator; it is never converted into a success
// response.
func (e *Engine) Turn(ctx context.Context, in TurnInput) (Response, error) {
	start := time.Now()

	ctx, span := engineTracer.Start(ctx, "callflow.turn")
	defer span.End()
	span.SetAttributes(attribute.String("callflow.session_id", in.SessionID))

	logger := e.logger.With("session_id", in.SessionID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("turn: unexpected fault",
				"panic", fmt.Sprint(r),
			)
			panic(r)
		}
	}()

	sess, err := e.store.Get(ctx, in.SessionID)
	if err != nil {
		span.RecordError(err)
		return Response{}, fmt.Errorf("turn: load session %s: %w", in.SessionID, err)
	}
	if sess == nil {
		sess = NewSession(in.SessionID, in.From, in.To)
		if in.Event == "" {
			in.Event = EventCallStarted
		}
		logger.Info("call started", "caller", sess.CallerNumber)
	}
	entryPhase := sess.Phase
	span.SetAttributes(attribute.String("callflow.entry_phase", string(entryPhase)))

	raw := e.dispatcher.Dispatch(in, sess)

	// Delegation gateway: perform the requested external call with a
	// bounded timeout and re-invoke the dispatcher with the result as a
	// synthetic turn event. At most one external attempt per delegation.
	for i := 0; i < maxDelegationsPerTurn; i++ {
		if raw.Action == nil || raw.Action.Type != ActionWebhook {
			break
		}
		outcome := e.delegate(ctx, raw.Action, in, sess, logger)
		cont := in
		cont.Event = EventDelegateResult
		cont.Delegate = &outcome
		raw = e.dispatcher.Dispatch(cont, sess)
	}
	if raw.Action != nil && raw.Action.Type == ActionWebhook {
		// A handler kept requesting delegations past the per-turn bound.
		logger.Error("turn: delegation limit exceeded",
			"phase", string(sess.Phase),
			"action", raw.Action.Name,
		)
		raw = e.dispatcher.terminalFailure(sess, "delegation-overflow", "")
		sess.Phase = PhaseFailed
	}

	resp, codes := Normalize(raw, sess.Phase)
	if len(codes) > 0 {
		logger.Warn("turn: contract violation",
			"phase", string(sess.Phase),
			"codes", codes,
		)
		for _, code := range codes {
			e.metrics.ObserveViolation(code)
		}
		resp = FailClosed(sess.Phase)
	}

	applyAntiReplay(sess, &resp)

	if resp.Action.Type == ActionSetState && len(resp.Action.Patch) > 0 {
		sess.applyPatch(resp.Action.Patch)
	}
	if resp.Action.Type == ActionEndCall && sess.Phase == PhaseFailed {
		e.metrics.ObserveEscalation(resp.Action.Reason)
	}

	sess.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, sess); err != nil {
		span.RecordError(err)
		return Response{}, fmt.Errorf("turn: save session %s: %w", sess.ID, err)
	}

	span.SetAttributes(attribute.String("callflow.phase", string(sess.Phase)))
	if entryPhase != sess.Phase {
		e.metrics.ObserveTransition(string(entryPhase), string(sess.Phase))
	}
	e.metrics.ObserveTurn(string(sess.Phase), turnStatus(codes))
	e.metrics.ObserveTurnLatency(string(sess.Phase), time.Since(start).Seconds())

	return resp, nil
}

func turnStatus(codes []string) string {
	if len(codes) > 0 {
		return "contract_violation"
	}
	return "ok"
}

// delegate performs one delegated call. Every failure mode, including a
// missing delegator, collapses into an OK=false outcome for the handler.
func (e *Engine) delegate(ctx context.Context, action *Action, in TurnInput, sess *Session, logger *logging.Logger) DelegateOutcome {
	ctx, span := engineTracer.Start(ctx, "callflow.delegate")
	defer span.End()
	span.SetAttributes(attribute.String("callflow.action", action.Name))

	outcome := DelegateOutcome{Name: action.Name}
	if e.delegator == nil {
		logger.Error("gateway: no delegator configured", "action", action.Name)
		e.metrics.ObserveDelegate(action.Name, "failure")
		return outcome
	}

	callCtx, cancel := context.WithTimeout(ctx, delegateTimeout)
	defer cancel()

	outcome.Result = e.delegator.Call(callCtx, DelegateRequest{
		Name:       action.Name,
		Payload:    action.Payload,
		SessionID:  sess.ID,
		Transcript: in.Transcript,
		Confidence: in.Confidence,
		Language:   in.Language,
	})

	status := "failure"
	if outcome.Result.OK {
		status = "success"
	}
	span.SetAttributes(attribute.Bool("callflow.delegate_ok", outcome.Result.OK))
	e.metrics.ObserveDelegate(action.Name, status)
	logger.Info("gateway: delegated call completed",
		"action", action.Name,
		"ok", outcome.Result.OK,
	)
	return outcome
}
