package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches conn to the thread and blocks until the peer leaves.
// welcome is queued ahead of any broadcast frame.
func ServeWs(hub *Hub, conn *websocket.Conn, threadKey, clientID string, welcome []byte) {
	client := &Client{
		Hub:       hub,
		Conn:      conn,
		ThreadKey: threadKey,
		ClientID:  clientID,
		Send:      make(chan []byte, sendBuffer),
	}
	client.Send <- welcome

	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// Reject sends a final frame and closes the socket with the given code.
func Reject(conn *websocket.Conn, frame []byte, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.TextMessage, frame)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	conn.Close()
}
