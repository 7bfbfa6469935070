package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// readWait is how long a status client may stay silent; browsers ping
	// well within it.
	readWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// NewErrorResponse builds the typed error event sent for a bad client message.
func NewErrorResponse(errMsg string) ErrorResponse {
	return ErrorResponse{
		Event: EventError,
		Error: errMsg,
	}
}

// ReadJSON reads and decodes a message into v with a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}
