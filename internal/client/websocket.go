package client

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/coin-chaos/internal/protocol"
)

// WSClient manages the WebSocket connection to the server
type WSClient struct {
	conn      *websocket.Conn
	send      chan []byte
	receive   chan *protocol.Message
	connected bool
	mu        sync.RWMutex
}

// NewWSClient dials the server and starts the read/write pumps.
func NewWSClient(serverURL string) (*WSClient, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(serverURL, nil)
	if err != nil {
		return nil, err
	}

	client := &WSClient{
		conn:      conn,
		send:      make(chan []byte, 256),
		receive:   make(chan *protocol.Message, 256),
		connected: true,
	}

	go client.readPump()
	go client.writePump()

	return client, nil
}

// readPump reads messages from the WebSocket connection. The receive
// channel is closed when the connection drops, so consumers can range
// over it.
func (c *WSClient) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
		close(c.receive)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		msg, err := protocol.DecodeMessage(message)
		if err != nil {
			log.Printf("Error decoding message: %v", err)
			continue
		}

		c.receive <- msg
	}
}

// writePump writes queued messages to the WebSocket connection.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage sends a message to the server
func (c *WSClient) SendMessage(msgType protocol.MessageType, payload interface{}) error {
	msg, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		return err
	}

	c.send <- msg
	return nil
}

// SendJoin asks to enter the lobby.
func (c *WSClient) SendJoin(name, password string) error {
	return c.SendMessage(protocol.MsgJoin, protocol.JoinPayload{
		Name:     name,
		Password: password,
	})
}

// SendMove sends a displacement request.
func (c *WSClient) SendMove(dx, dy float64) error {
	return c.SendMessage(protocol.MsgMove, protocol.MovePayload{DX: dx, DY: dy})
}

// SendChat sends a chat line.
func (c *WSClient) SendChat(text string) error {
	return c.SendMessage(protocol.MsgChat, protocol.ChatPayload{Text: text})
}

// SendStartGame asks to start a game of the given duration. Host only;
// the server reports refusals as system messages.
func (c *WSClient) SendStartGame(minutes int) error {
	return c.SendMessage(protocol.MsgStartGame, protocol.StartGamePayload{
		DurationMinutes: minutes,
	})
}

// Receive returns the channel for receiving messages
func (c *WSClient) Receive() <-chan *protocol.Message {
	return c.receive
}

// IsConnected checks if the client is connected
func (c *WSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Close closes the WebSocket connection
func (c *WSClient) Close() error {
	close(c.send)
	return c.conn.Close()
}
