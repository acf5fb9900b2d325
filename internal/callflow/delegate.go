package callflow

import "context"

// Delegated call names. These are the only external business operations a
// handler may request through the gateway.
const (
	DelegateFormatID            = "FORMAT_ID"
	DelegateValidatePatient     = "VALIDATE_PATIENT"
	DelegateGetNextAvailability = "GET_NEXT_AVAILABILITY"
	DelegateConfirmAvailability = "CONFIRM_AVAILABILITY"
	DelegateReleaseAvailability = "RELEASE_AVAILABILITY"
)

// DelegateRequest carries one delegated call through the gateway.
type DelegateRequest struct {
	Name       string
	Payload    map[string]any
	SessionID  string
	Transcript string
	Confidence float64
	Language   string
}

// DelegateResult is the outcome of a delegated call. OK=false is a
// first-class, expected outcome covering network errors, timeouts,
// non-success statuses, and unparsable payloads alike; handlers branch on
// it, they never see the underlying error.
type DelegateResult struct {
	OK   bool
	Data map[string]any
}

// Str returns a string field from the result payload, or "".
func (r DelegateResult) Str(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns a boolean field from the result payload, or false.
func (r DelegateResult) Bool(key string) bool {
	if v, ok := r.Data[key].(bool); ok {
		return v
	}
	return false
}

// Int returns a numeric field from the result payload, or 0. JSON numbers
// decode as float64, so both representations are accepted.
func (r DelegateResult) Int(key string) int {
	switch v := r.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Delegator executes delegated calls on behalf of the gateway. The contract
// is single-shot: one external attempt per call, bounded by the gateway
// timeout, every failure collapsed into an OK=false result. A Delegator
// implementation may substitute a local deterministic computation for a
// specific call name; that is a delegate-level policy, not a retry.
type Delegator interface {
	Call(ctx context.Context, req DelegateRequest) DelegateResult
}

// DelegateOutcome is the continuation payload injected into the synthetic
// turn that follows a delegated call.
type DelegateOutcome struct {
	Name   string
	Result DelegateResult
}
