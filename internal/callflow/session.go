package callflow

import (
	"time"
)

// Slot is an appointment opening offered to the caller. Availability lookups
// place a tentative hold on the slot; declining it triggers a release.
type Slot struct {
	SlotID       string    `json:"slot_id"`
	StartsAt     time.Time `json:"starts_at"`
	Professional string    `json:"professional"`
	Specialty    string    `json:"specialty,omitempty"`
}

// Session is the per-call conversation state. It is exclusively owned by one
// call: created when the call starts, mutated only by handlers and the
// engine's post-processing, and retired when the call ends. Turns for one
// session are strictly serialized by the transport, so no locking is needed
// inside the session itself.
type Session struct {
	ID           string `json:"id"`
	Phase        Phase  `json:"phase"`
	CallerNumber string `json:"caller_number,omitempty"`
	ClinicNumber string `json:"clinic_number,omitempty"`

	// Partially captured ID components, pending caller confirmation.
	IDBody       string `json:"id_body,omitempty"`
	IDCheckDigit string `json:"id_check_digit,omitempty"`
	// ConfirmedID is the normalized national ID after the caller confirms it.
	ConfirmedID string `json:"confirmed_id,omitempty"`

	PatientName string `json:"patient_name,omitempty"`
	PatientAge  int    `json:"patient_age,omitempty"`

	Specialty         string `json:"specialty,omitempty"`
	RequestedDate     string `json:"requested_date,omitempty"` // YYYY-MM-DD
	EarliestRequested bool   `json:"earliest_requested,omitempty"`
	OfferedSlot       *Slot  `json:"offered_slot,omitempty"`

	// Attempts holds one counter per listening phase. A counter increments
	// at most once per turn and resets only on a state-advancing transition
	// out of its owning phase.
	Attempts map[Phase]int `json:"attempts,omitempty"`

	Confirmed bool   `json:"confirmed"`
	EndReason string `json:"end_reason,omitempty"`

	// Anti-replay cache: the last (phase, spoken-text) pair emitted.
	LastEmitPhase Phase  `json:"last_emit_phase,omitempty"`
	LastEmitText  string `json:"last_emit_text,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates call state positioned at the opening greeting.
func NewSession(id, caller, clinic string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		Phase:        PhaseStartGreeting,
		CallerNumber: caller,
		ClinicNumber: clinic,
		Attempts:     make(map[Phase]int),
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

// Attempt returns the current attempt counter for a listening phase.
func (s *Session) Attempt(p Phase) int {
	if s.Attempts == nil {
		return 0
	}
	return s.Attempts[p]
}

// bumpAttempt increments the counter for p and returns the new value.
func (s *Session) bumpAttempt(p Phase) int {
	if s.Attempts == nil {
		s.Attempts = make(map[Phase]int)
	}
	s.Attempts[p]++
	return s.Attempts[p]
}

// resetAttempt clears the counter on a state-advancing exit from p.
func (s *Session) resetAttempt(p Phase) {
	if s.Attempts != nil {
		delete(s.Attempts, p)
	}
}

// applyPatch applies a SetState patch from a normalized response. Only known
// keys are recognized; the contract forbids reflection-driven assignment.
func (s *Session) applyPatch(patch map[string]any) {
	for key, val := range patch {
		switch key {
		case "specialty":
			if v, ok := val.(string); ok {
				s.Specialty = v
			}
		case "requested_date":
			if v, ok := val.(string); ok {
				s.RequestedDate = v
			}
		case "patient_name":
			if v, ok := val.(string); ok {
				s.PatientName = v
			}
		case "confirmed":
			if v, ok := val.(bool); ok {
				s.Confirmed = v
			}
		case "end_reason":
			if v, ok := val.(string); ok {
				s.EndReason = v
			}
		}
	}
}
