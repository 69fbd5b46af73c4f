package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	turnTimeout    = 2 * time.Minute

	FrameResponse = "response"
	FrameError    = "error"

	msgBadFrame = "Invalid message format."
	msgBusy     = "Please wait for the previous answer before asking again."

	// maxQueuedTurns bounds the frames waiting behind the running turn
	maxQueuedTurns = 8
)

// TurnHandler runs one dialog turn for a connection
type TurnHandler func(ctx context.Context, domain, sessionID string, req dto.AskRequest) (*dto.AskResponse, error)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID and Domain route the turns of this connection
	SessionID string
	Domain    string

	// Buffered channel of outbound messages.
	Send chan []byte

	handle TurnHandler

	// ctx is cancelled once the connection is gone, so a running turn commits nothing
	ctx    context.Context
	cancel context.CancelFunc
	turns  chan []byte
	done   chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID, domain string, handle TurnHandler) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Domain:    domain,
		Send:      make(chan []byte, 256),
		handle:    handle,
		ctx:       ctx,
		cancel:    cancel,
		turns:     make(chan []byte, maxQueuedTurns),
		done:      make(chan struct{}),
	}
}

// readPump keeps reading while a turn runs so a closed connection is noticed
// mid-turn. Frames are queued for runTurns, which answers them one at a time.
func (c *Client) readPump() {
	defer func() {
		c.stopTurns()
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for session %s: %v", c.SessionID, err)
			}
			break
		}
		c.enqueue(data)
	}
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.turns <- data:
	default:
		c.reply(encodeFrame(FrameError, errorBody(msgBusy)))
	}
}

// runTurns answers queued frames in order until the connection stops
func (c *Client) runTurns() {
	defer close(c.done)
	for data := range c.turns {
		if c.ctx.Err() != nil {
			continue
		}
		out := c.answer(c.ctx, data)
		if c.ctx.Err() != nil {
			continue
		}
		c.reply(out)
	}
}

// stopTurns cancels the running turn and waits for the worker to exit
func (c *Client) stopTurns() {
	c.cancel()
	close(c.turns)
	<-c.done
}

func (c *Client) reply(message []byte) {
	select {
	case c.Send <- message:
	default:
		log.Printf("send buffer full for session %s, dropping frame", c.SessionID)
	}
}

// answer turns one inbound frame into the encoded outbound frame
func (c *Client) answer(parent context.Context, data []byte) []byte {
	var req dto.AskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return encodeFrame(FrameError, errorBody(msgBadFrame))
	}
	req.Channel = dto.ChannelWebSocket

	ctx, cancel := context.WithTimeout(parent, turnTimeout)
	defer cancel()

	resp, err := c.handle(ctx, c.Domain, c.SessionID, req)
	if err != nil {
		msg := serverutils.InternalErrorMessage
		if errors.Is(err, serverutils.ErrValidation) {
			msg = serverutils.ValidationMessage(err)
		} else {
			log.Printf("turn failed for session %s: %v", c.SessionID, err)
		}
		return encodeFrame(FrameError, errorBody(msg))
	}
	return encodeFrame(FrameResponse, resp)
}

func errorBody(msg string) dto.AskError {
	return dto.AskError{Status: "error", Response: msg}
}

func encodeFrame(frameType string, data interface{}) []byte {
	b, _ := json.Marshal(dto.WsFrame{Type: frameType, Data: data})
	return b
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message; clients parse each frame as a single JSON object
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump Ping error for session %s: %v", c.SessionID, err)
				return
			}
		}
	}
}
