package handoff

import (
	"context"
	"fmt"
	"testing"

	"school-assist-be/pkg/dialog/response"
	"school-assist-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	sessionID string
	to        string
	payload   string
}

type fakeDispatcher struct {
	ok   bool
	sent []sentMail
}

func (f *fakeDispatcher) Dispatch(_ context.Context, sessionID, to, payload string) bool {
	f.sent = append(f.sent, sentMail{sessionID: sessionID, to: to, payload: payload})
	return f.ok
}

type fakeConfirmer struct {
	outcome response.GenerationOutcome
	tier    response.Tier
	calls   int
}

func (f *fakeConfirmer) Synthesize(_ context.Context, _, _, _, _ string) (response.GenerationOutcome, response.Tier) {
	f.calls++
	return f.outcome, f.tier
}

func groundedSession() *store.Session {
	sess := store.NewSession("s-1")
	sess.LastGroundingPayload = "Name: Govt School\nAddress: Jayanagar"
	sess.RollingSummary = "User asked for schools near Jayanagar."
	return sess
}

func TestHandle_NotEngaged(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := groundedSession()

	reply, handled := m.Handle(context.Background(), sess, "find schools near Jayanagar")

	assert.False(t, handled)
	assert.Empty(t, reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
}

func TestHandle_NoGroundingStaysIdle(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := store.NewSession("s-1")

	reply, handled := m.Handle(context.Background(), sess, "email me these notes")

	assert.True(t, handled)
	assert.Equal(t, MsgNothingAskedYet, reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
}

func TestHandle_HappyPath(t *testing.T) {
	dispatcher := &fakeDispatcher{ok: true}
	var transitions []string
	m := NewMachine(dispatcher, nil, nil, WithTransitionObserver(func(from, to store.EmailFlowState) {
		transitions = append(transitions, fmt.Sprintf("%s>%s", from, to))
	}))
	sess := groundedSession()
	ctx := context.Background()

	reply, handled := m.Handle(ctx, sess, "Please email me these notes")
	require.True(t, handled)
	assert.Equal(t, MsgAskEmail, reply)
	assert.Equal(t, store.EmailFlowAwaitingEmail, sess.EmailFlow)

	reply, _ = m.Handle(ctx, sess, "it is a.b@x.org")
	assert.Equal(t, store.EmailFlowAwaitingConfirmation, sess.EmailFlow)
	assert.Equal(t, "a.b@x.org", sess.PendingEmail)
	assert.Contains(t, reply, "a.b@x.org")
	assert.Empty(t, dispatcher.sent)

	reply, _ = m.Handle(ctx, sess, "yes that's correct")
	assert.Equal(t, fmt.Sprintf(MsgSent, "a.b@x.org"), reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
	assert.Empty(t, sess.PendingEmail)

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, sentMail{sessionID: "s-1", to: "a.b@x.org", payload: sess.LastGroundingPayload}, dispatcher.sent[0])

	assert.Equal(t, []string{
		"NONE>AWAITING_EMAIL",
		"AWAITING_EMAIL>AWAITING_CONFIRMATION",
		"AWAITING_CONFIRMATION>CONFIRMED",
		"CONFIRMED>SENT",
		"SENT>NONE",
	}, transitions)
}

func TestHandle_DispatchFailureResets(t *testing.T) {
	dispatcher := &fakeDispatcher{ok: false}
	m := NewMachine(dispatcher, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation
	sess.PendingEmail = "a@b.co"

	reply, handled := m.Handle(context.Background(), sess, "yes that's correct")

	assert.True(t, handled)
	assert.Equal(t, fmt.Sprintf(MsgSendFailed, "a@b.co"), reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
	assert.Empty(t, sess.PendingEmail)
	assert.Len(t, dispatcher.sent, 1)
}

func TestHandle_RepromptsWithoutEmail(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingEmail

	reply, _ := m.Handle(context.Background(), sess, "I don't remember it")

	assert.Equal(t, MsgRepromptEmail, reply)
	assert.Equal(t, store.EmailFlowAwaitingEmail, sess.EmailFlow)
}

func TestHandle_NonAffirmativeAsksAgain(t *testing.T) {
	dispatcher := &fakeDispatcher{ok: true}
	m := NewMachine(dispatcher, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation
	sess.PendingEmail = "a@b.co"

	reply, _ := m.Handle(context.Background(), sess, "hmm what")

	assert.Equal(t, fmt.Sprintf(MsgNotUnderstood, "a@b.co"), reply)
	assert.Equal(t, store.EmailFlowAwaitingConfirmation, sess.EmailFlow)
	assert.Empty(t, dispatcher.sent)
}

func TestHandle_CorrectedAddressIsReconfirmed(t *testing.T) {
	dispatcher := &fakeDispatcher{ok: true}
	m := NewMachine(dispatcher, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation
	sess.PendingEmail = "a@b.co"

	reply, _ := m.Handle(context.Background(), sess, "no, use c@d.org instead")

	assert.Equal(t, "c@d.org", sess.PendingEmail)
	assert.Equal(t, store.EmailFlowAwaitingConfirmation, sess.EmailFlow)
	assert.Contains(t, reply, "c@d.org")
	assert.Empty(t, dispatcher.sent)
}

func TestHandle_ConfirmationWithoutPendingEmail(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation

	reply, _ := m.Handle(context.Background(), sess, "yes")

	assert.Equal(t, MsgAskEmail, reply)
	assert.Equal(t, store.EmailFlowAwaitingEmail, sess.EmailFlow)
}

func TestHandle_Cancel(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowAwaitingEmail

	reply, handled := m.Handle(context.Background(), sess, "never mind")

	assert.True(t, handled)
	assert.Equal(t, MsgAbandoned, reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
}

func TestHandle_AddressContainingCancelWord(t *testing.T) {
	for _, addr := range []string{"christopher@gmail.com", "a.stone.stopford@school.in", "cancellara@example.org"} {
		t.Run(addr, func(t *testing.T) {
			dispatcher := &fakeDispatcher{ok: true}
			m := NewMachine(dispatcher, nil, nil)
			sess := groundedSession()
			ctx := context.Background()

			_, handled := m.Handle(ctx, sess, "email me these notes")
			require.True(t, handled)

			reply, _ := m.Handle(ctx, sess, "my email is "+addr)
			assert.Equal(t, store.EmailFlowAwaitingConfirmation, sess.EmailFlow)
			assert.Equal(t, addr, sess.PendingEmail)
			assert.Contains(t, reply, addr)

			reply, _ = m.Handle(ctx, sess, "yes, "+addr+" is right")
			assert.Equal(t, fmt.Sprintf(MsgSent, addr), reply)
			require.Len(t, dispatcher.sent, 1)
			assert.Equal(t, addr, dispatcher.sent[0].to)
		})
	}
}

func TestHandle_StaleTerminalStateResets(t *testing.T) {
	m := NewMachine(&fakeDispatcher{ok: true}, nil, nil)
	sess := groundedSession()
	sess.EmailFlow = store.EmailFlowSent
	sess.PendingEmail = "a@b.co"

	reply, handled := m.Handle(context.Background(), sess, "tell me about scholarships")

	assert.False(t, handled)
	assert.Empty(t, reply)
	assert.Equal(t, store.EmailFlowNone, sess.EmailFlow)
	assert.Empty(t, sess.PendingEmail)
}

func TestConfirmPrompt_GeneratedAndFallback(t *testing.T) {
	tests := []struct {
		name        string
		confirmer   *fakeConfirmer
		wantReply   string
		wantSummary string
	}{
		{
			name: "generated prompt repeats the address",
			confirmer: &fakeConfirmer{
				outcome: response.GenerationOutcome{Reply: "Is a@b.co spelled right?", UpdatedSummary: "User gave a@b.co."},
				tier:    response.TierDirect,
			},
			wantReply:   "Is a@b.co spelled right?",
			wantSummary: "User gave a@b.co.",
		},
		{
			name: "generation fell back",
			confirmer: &fakeConfirmer{
				outcome: response.GenerationOutcome{Reply: response.FallbackReply, UpdatedSummary: "User asked for schools near Jayanagar."},
				tier:    response.TierFallback,
			},
			wantReply:   fmt.Sprintf(msgConfirmTemplate, "a@b.co"),
			wantSummary: "User asked for schools near Jayanagar.",
		},
		{
			name: "generated prompt drops the address",
			confirmer: &fakeConfirmer{
				outcome: response.GenerationOutcome{Reply: "Is that right?", UpdatedSummary: "x"},
				tier:    response.TierRepair,
			},
			wantReply:   fmt.Sprintf(msgConfirmTemplate, "a@b.co"),
			wantSummary: "User asked for schools near Jayanagar.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(&fakeDispatcher{ok: true}, tt.confirmer, nil)
			sess := groundedSession()
			sess.EmailFlow = store.EmailFlowAwaitingEmail

			reply, _ := m.Handle(context.Background(), sess, "a@b.co")

			assert.Equal(t, 1, tt.confirmer.calls)
			assert.Equal(t, tt.wantReply, reply)
			assert.Equal(t, tt.wantSummary, sess.RollingSummary)
		})
	}
}

func TestCheckPending(t *testing.T) {
	sess := store.NewSession("s-1")
	sess.EmailFlow = store.EmailFlowAwaitingConfirmation
	assert.ErrorIs(t, checkPending(sess), ErrNoPendingEmail)

	sess.PendingEmail = "a@b.co"
	assert.NoError(t, checkPending(sess))
}
