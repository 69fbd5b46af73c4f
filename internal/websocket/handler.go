package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs binds a connection to a session and domain and runs its pumps.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID, domain string, handle TurnHandler) {
	client := newClient(hub, c, sessionID, domain, handle)
	if !hub.join(client) {
		c.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.runTurns()
	client.readPump() // Run readPump in current goroutine (handler)
}
