package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"school-assist-be/pkg/dialog"
	"school-assist-be/pkg/dialog/intent"
	"school-assist-be/pkg/dialog/response"
	"school-assist-be/pkg/dialog/slot"
	"school-assist-be/pkg/store"
)

const (
	MsgNothingAskedYet = "You haven't asked me anything yet that I could email. Ask me a question first, then I can send you the notes."
	MsgAskEmail        = "Sure! Please tell me the email address where I should send these notes."
	MsgRepromptEmail   = "I couldn't find an email address in that. Please share it like name@example.com."
	MsgNotUnderstood   = "Sorry, I didn't understand. Please confirm that %s is the right email address by saying yes."
	MsgSent            = "Done! I've emailed the notes to %s."
	MsgSendFailed      = "Sorry, I couldn't send the email to %s. Please try again later."
	MsgAbandoned       = "Okay, I won't send the email."
	msgConfirmTemplate = "I have your email as %s. Is that correct?"

	confirmRole = "Email Assistant"
)

var (
	DefaultTriggers = []string{
		"email", "e-mail", "mail me", "mail it", "mail these", "mail the",
		"send me the notes", "send me these", "send these notes", "send the notes", "send notes",
	}
	DefaultAffirmatives = []string{
		"yes", "yeah", "yep", "correct", "okay", "sure", "confirm", "go ahead", "send it", "that's right",
	}
	DefaultCancels = []string{"cancel", "never mind", "nevermind", "don't send", "do not send", "stop"}
)

// ErrNoPendingEmail marks a session awaiting confirmation with no address to confirm
var ErrNoPendingEmail = errors.New("email flow awaiting confirmation without a pending address")

// Dispatcher delivers the grounded notes; it reports success without retrying
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID, to, payload string) bool
}

// Confirmer generates the spelling-confirmation prompt
type Confirmer interface {
	Synthesize(ctx context.Context, role, utterance, summary, grounding string) (response.GenerationOutcome, response.Tier)
}

// Machine drives the email hand-off sub-flow layered over normal intent handling
type Machine struct {
	dispatcher   Dispatcher
	confirmer    Confirmer
	logger       dialog.Logger
	triggers     []string
	affirmatives []string
	cancels      []string
	onTransition func(from, to store.EmailFlowState)
}

type Option func(*Machine)

func WithTransitionObserver(fn func(from, to store.EmailFlowState)) Option {
	return func(m *Machine) {
		m.onTransition = fn
	}
}

func NewMachine(dispatcher Dispatcher, confirmer Confirmer, logger dialog.Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = dialog.NopLogger()
	}
	m := &Machine{
		dispatcher:   dispatcher,
		confirmer:    confirmer,
		logger:       logger,
		triggers:     DefaultTriggers,
		affirmatives: DefaultAffirmatives,
		cancels:      DefaultCancels,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engages reports whether the machine takes over this turn
func (m *Machine) Engages(sess *store.Session, utterance string) bool {
	if sess.EmailFlow != "" && sess.EmailFlow != store.EmailFlowNone {
		return true
	}
	return intent.ContainsAny(utterance, m.triggers)
}

// Handle advances the sub-flow by one turn. handled is false when the machine
// does not engage and normal intent handling should run instead.
func (m *Machine) Handle(ctx context.Context, sess *store.Session, utterance string) (reply string, handled bool) {
	// Terminal states left behind by an interrupted turn reset before evaluation
	if sess.EmailFlow == store.EmailFlowSent || sess.EmailFlow == store.EmailFlowConfirmed || sess.EmailFlow == "" {
		m.transition(sess, store.EmailFlowNone)
		sess.PendingEmail = ""
	}

	if !m.Engages(sess, utterance) {
		return "", false
	}

	if sess.EmailFlow != store.EmailFlowNone && intent.ContainsAny(withoutAddresses(utterance), m.cancels) {
		m.reset(sess)
		return MsgAbandoned, true
	}

	switch sess.EmailFlow {
	case store.EmailFlowNone:
		return m.handleIdle(sess), true
	case store.EmailFlowAwaitingEmail:
		return m.handleAwaitingEmail(ctx, sess, utterance), true
	case store.EmailFlowAwaitingConfirmation:
		return m.handleAwaitingConfirmation(ctx, sess, utterance), true
	}

	m.logger.Warn("HANDOFF", "Unknown email flow state, resetting", map[string]interface{}{
		"session_id": sess.ID,
		"state":      string(sess.EmailFlow),
	})
	m.reset(sess)
	return m.handleIdle(sess), true
}

func (m *Machine) handleIdle(sess *store.Session) string {
	if strings.TrimSpace(sess.LastGroundingPayload) == "" {
		return MsgNothingAskedYet
	}
	m.transition(sess, store.EmailFlowAwaitingEmail)
	return MsgAskEmail
}

func (m *Machine) handleAwaitingEmail(ctx context.Context, sess *store.Session, utterance string) string {
	email := slot.EmailPattern.FindString(utterance)
	if email == "" {
		return MsgRepromptEmail
	}
	sess.PendingEmail = email
	m.transition(sess, store.EmailFlowAwaitingConfirmation)
	return m.confirmPrompt(ctx, sess, utterance, email)
}

func (m *Machine) handleAwaitingConfirmation(ctx context.Context, sess *store.Session, utterance string) string {
	if err := checkPending(sess); err != nil {
		m.logger.Warn("HANDOFF", "Inconsistent email flow, asking for the address again", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		m.transition(sess, store.EmailFlowAwaitingEmail)
		return MsgAskEmail
	}

	if !intent.ContainsAny(withoutAddresses(utterance), m.affirmatives) {
		// A corrected address replaces the pending one and is confirmed again
		if email := slot.EmailPattern.FindString(utterance); email != "" && email != sess.PendingEmail {
			sess.PendingEmail = email
			return m.confirmPrompt(ctx, sess, utterance, email)
		}
		return fmt.Sprintf(MsgNotUnderstood, sess.PendingEmail)
	}

	to := sess.PendingEmail
	m.transition(sess, store.EmailFlowConfirmed)

	if strings.TrimSpace(sess.LastGroundingPayload) == "" {
		m.reset(sess)
		return MsgNothingAskedYet
	}

	if !m.dispatcher.Dispatch(ctx, sess.ID, to, sess.LastGroundingPayload) {
		m.logger.Warn("HANDOFF", "Email dispatch failed", map[string]interface{}{
			"session_id": sess.ID,
			"to":         to,
		})
		m.reset(sess)
		return fmt.Sprintf(MsgSendFailed, to)
	}

	m.transition(sess, store.EmailFlowSent)
	m.reset(sess)
	return fmt.Sprintf(MsgSent, to)
}

// withoutAddresses blanks email addresses so cancel and affirmative words
// are not matched inside one, as "stop" is in christopher@example.com
func withoutAddresses(utterance string) string {
	return slot.EmailPattern.ReplaceAllString(utterance, " ")
}

func checkPending(sess *store.Session) error {
	if sess.EmailFlow == store.EmailFlowAwaitingConfirmation && strings.TrimSpace(sess.PendingEmail) == "" {
		return ErrNoPendingEmail
	}
	return nil
}

func (m *Machine) confirmPrompt(ctx context.Context, sess *store.Session, utterance, email string) string {
	if m.confirmer == nil {
		return fmt.Sprintf(msgConfirmTemplate, email)
	}

	instructions := fmt.Sprintf(
		"The user wants the notes emailed to %s. Repeat this address back exactly as written and ask the user to confirm the spelling is correct. Do not say the email was sent.",
		email,
	)
	outcome, tier := m.confirmer.Synthesize(ctx, confirmRole, utterance, sess.RollingSummary, instructions)
	if tier == response.TierFallback || !strings.Contains(outcome.Reply, email) {
		return fmt.Sprintf(msgConfirmTemplate, email)
	}
	sess.RollingSummary = outcome.UpdatedSummary
	return outcome.Reply
}

func (m *Machine) reset(sess *store.Session) {
	m.transition(sess, store.EmailFlowNone)
	sess.PendingEmail = ""
}

func (m *Machine) transition(sess *store.Session, to store.EmailFlowState) {
	from := sess.EmailFlow
	if from == to {
		return
	}
	sess.EmailFlow = to
	m.logger.Debug("HANDOFF", "Email flow transition", map[string]interface{}{
		"session_id": sess.ID,
		"from":       string(from),
		"to":         string(to),
	})
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}
