package store

import "time"

// EmailFlowState tracks the email hand-off sub-flow of a session
type EmailFlowState string

const (
	EmailFlowNone                 EmailFlowState = "NONE"
	EmailFlowAwaitingEmail        EmailFlowState = "AWAITING_EMAIL"
	EmailFlowAwaitingConfirmation EmailFlowState = "AWAITING_CONFIRMATION"
	EmailFlowConfirmed            EmailFlowState = "CONFIRMED"
	EmailFlowSent                 EmailFlowState = "SENT"
)

const DefaultLanguage = "english"

// Session represents the per-conversation dialog state
type Session struct {
	ID       string `json:"id"`
	Language string `json:"language"`

	// Slots collected by the active transactional flow (e.g. admission)
	Slots      map[string]string `json:"slots"`
	ActiveFlow string            `json:"active_flow"`

	// Cumulative digest regenerated every successful generation
	RollingSummary string `json:"rolling_summary"`

	EmailFlow            EmailFlowState `json:"email_flow"`
	PendingEmail         string         `json:"pending_email"`
	LastGroundingPayload string         `json:"last_grounding_payload"`

	// Voice chosen per language code, kept for the whole session
	Voices map[string]string `json:"voices"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session with defaults applied
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Language:  DefaultLanguage,
		Slots:     map[string]string{},
		EmailFlow: EmailFlowNone,
		Voices:    map[string]string{},
		UpdatedAt: time.Now(),
	}
}

// Clone returns a deep copy so callers can mutate without touching stored state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Slots = make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	c.Voices = make(map[string]string, len(s.Voices))
	for k, v := range s.Voices {
		c.Voices[k] = v
	}
	if c.EmailFlow == "" {
		c.EmailFlow = EmailFlowNone
	}
	return &c
}

// MissingFields returns required fields that are absent or empty, in declared order
func (s *Session) MissingFields(required []string) []string {
	var missing []string
	for _, f := range required {
		if v, ok := s.Slots[f]; !ok || v == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// ClearSlots ends the active transactional flow
func (s *Session) ClearSlots() {
	s.Slots = map[string]string{}
	s.ActiveFlow = ""
}
