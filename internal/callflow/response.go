package callflow

// ActionType tags the variant of a response action.
type ActionType string

const (
	ActionSetState  ActionType = "set_state"
	ActionWebhook   ActionType = "webhook"
	ActionEndCall   ActionType = "end_call"
	ActionPlayAudio ActionType = "play_audio"
	ActionUseEngine ActionType = "use_engine"
)

// Action is the tagged union of things a response can ask the transport (or
// the delegation gateway) to do. Exactly one variant's fields are set,
// selected by Type.
type Action struct {
	Type ActionType `json:"type"`

	// set_state
	Patch map[string]any `json:"patch,omitempty"`

	// webhook (delegated call)
	Name    string         `json:"name,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`

	// end_call
	Reason string `json:"reason,omitempty"`

	// play_audio
	AudioPath string `json:"audio_path,omitempty"`

	// use_engine
	Meta map[string]any `json:"meta,omitempty"`
}

// SetState builds a state-patch action. A nil patch is the no-op default.
func SetState(patch map[string]any) *Action {
	return &Action{Type: ActionSetState, Patch: patch}
}

// WebhookAction requests a delegated external call.
func WebhookAction(name string, payload map[string]any) *Action {
	return &Action{Type: ActionWebhook, Name: name, Payload: payload}
}

// EndCall terminates the call with a machine-readable reason code.
func EndCall(reason string) *Action {
	return &Action{Type: ActionEndCall, Reason: reason}
}

// PlayAudio plays a pre-recorded file instead of synthesized speech.
func PlayAudio(path string) *Action {
	return &Action{Type: ActionPlayAudio, AudioPath: path}
}

// UseEngine switches the speech engine for the next utterance.
func UseEngine(meta map[string]any) *Action {
	return &Action{Type: ActionUseEngine, Meta: meta}
}

// Raw is a handler's unvalidated output. Fields that the contract coerces
// are deliberately loosely typed: the normalizer, not the handler, is
// responsible for producing a well-formed Response.
type Raw struct {
	Say       any
	NextPhase Phase
	Action    *Action
	Silent    any
	SkipInput any
	Hangup    bool
	Audio     any
}

// Response is the strict domain response emitted once per turn. The
// transport interprets it as speech, audio playback, listen/no-listen, or
// call termination.
type Response struct {
	// Say is the spoken text; nil means silence.
	Say       *string `json:"say"`
	NextPhase Phase   `json:"next_phase"`
	Action    *Action `json:"action"`
	Silent    bool    `json:"silent"`
	SkipInput bool    `json:"skip_input"`
	Hangup    bool    `json:"hangup"`
	Audio     *string `json:"audio,omitempty"`
}

// AsRaw converts a normalized response back into handler-output form.
// Normalization is idempotent over this view.
func (r Response) AsRaw() Raw {
	raw := Raw{
		NextPhase: r.NextPhase,
		Action:    r.Action,
		Silent:    r.Silent,
		SkipInput: r.SkipInput,
		Hangup:    r.Hangup,
	}
	if r.Say != nil {
		raw.Say = *r.Say
	}
	if r.Audio != nil {
		raw.Audio = *r.Audio
	}
	return raw
}
