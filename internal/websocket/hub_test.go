package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connected(h *Hub, sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]) > 0
}

func decodeFrame(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &frame))
	return frame
}

func TestHub_NotifyReachesOnlyTargetSession(t *testing.T) {
	hub := startHub(t)
	a := &Client{Hub: hub, SessionID: "a", Send: make(chan []byte, 1)}
	b := &Client{Hub: hub, SessionID: "b", Send: make(chan []byte, 1)}
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool { return connected(hub, "a") && connected(hub, "b") }, time.Second, 5*time.Millisecond)

	hub.Notify("a", "email.sent", map[string]string{"to": "parent@example.com"})

	select {
	case msg := <-a.Send:
		frame := decodeFrame(t, msg)
		assert.Equal(t, "email.sent", frame["type"])
	case <-time.After(time.Second):
		t.Fatal("session a did not receive the frame")
	}
	assert.Empty(t, b.Send)
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	hub := startHub(t)
	c := &Client{Hub: hub, SessionID: "a", Send: make(chan []byte, 1)}
	hub.register <- c
	require.Eventually(t, func() bool { return connected(hub, "a") }, time.Second, 5*time.Millisecond)

	hub.Notify("a", "first", nil)
	hub.Notify("a", "second", nil)

	assert.Len(t, c.Send, 1)
	assert.Equal(t, "first", decodeFrame(t, <-c.Send)["type"])
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := &Client{Hub: hub, SessionID: "a", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	require.Eventually(t, func() bool { return !connected(hub, "a") }, time.Second, 5*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestClient_Answer(t *testing.T) {
	var got dto.AskRequest
	c := &Client{SessionID: "s1", Domain: "scholarships", handle: func(ctx context.Context, domain, sessionID string, req dto.AskRequest) (*dto.AskResponse, error) {
		got = req
		switch req.Prompt {
		case "":
			return nil, fmt.Errorf("%w: Please provide a question.", serverutils.ErrValidation)
		case "boom":
			return nil, errors.New("db down")
		}
		return &dto.AskResponse{Status: "success", Response: "answer to " + req.Prompt}, nil
	}}

	frame := decodeFrame(t, c.answer(context.Background(), []byte(`{"prompt": "scholarships for girls"}`)))
	assert.Equal(t, FrameResponse, frame["type"])
	assert.Equal(t, "answer to scholarships for girls", frame["data"].(map[string]interface{})["response"])
	assert.Equal(t, dto.ChannelWebSocket, got.Channel)

	frame = decodeFrame(t, c.answer(context.Background(), []byte(`{"prompt": ""}`)))
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, "Please provide a question.", frame["data"].(map[string]interface{})["response"])

	frame = decodeFrame(t, c.answer(context.Background(), []byte(`{"prompt": "boom"}`)))
	assert.Equal(t, serverutils.InternalErrorMessage, frame["data"].(map[string]interface{})["response"])

	frame = decodeFrame(t, c.answer(context.Background(), []byte(`not json`)))
	assert.Equal(t, FrameError, frame["type"])
}

func TestClient_DisconnectMidTurnCommitsNothing(t *testing.T) {
	started := make(chan struct{})
	var saved atomic.Bool
	c := newClient(nil, nil, "s1", "scholarships", func(ctx context.Context, domain, sessionID string, req dto.AskRequest) (*dto.AskResponse, error) {
		close(started)
		<-ctx.Done()
		// Mirrors HandleTurn: the session is saved only while the turn is live
		if ctx.Err() == nil {
			saved.Store(true)
		}
		return nil, ctx.Err()
	})
	go c.runTurns()

	c.enqueue([]byte(`{"prompt": "scholarships for girls"}`))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("turn did not start")
	}

	// The read loop hitting a closed connection stops the turns
	c.stopTurns()

	assert.False(t, saved.Load())
	assert.Empty(t, c.Send)
}

func TestClient_TurnsRunInOrder(t *testing.T) {
	var prompts []string
	c := newClient(nil, nil, "s1", "scholarships", func(ctx context.Context, domain, sessionID string, req dto.AskRequest) (*dto.AskResponse, error) {
		prompts = append(prompts, req.Prompt)
		return &dto.AskResponse{Status: "success", Response: "answer to " + req.Prompt}, nil
	})
	go c.runTurns()

	c.enqueue([]byte(`{"prompt": "first"}`))
	c.enqueue([]byte(`{"prompt": "second"}`))

	for _, want := range []string{"answer to first", "answer to second"} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, want, decodeFrame(t, msg)["data"].(map[string]interface{})["response"])
		case <-time.After(time.Second):
			t.Fatalf("missing %q", want)
		}
	}
	c.stopTurns()
	assert.Equal(t, []string{"first", "second"}, prompts)
}

func TestHub_LeaveAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := &Client{Hub: hub, SessionID: "a", Send: make(chan []byte, 1)}
	left := make(chan struct{})
	go func() {
		assert.False(t, hub.join(c))
		hub.leave(c)
		close(left)
	}()

	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
}
