package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/coin-chaos/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second    // time allowed to read the next pong from the client
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{ // upgrade HTTP connections to WebSocket connections
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // game clients connect from anywhere
	},
}

// Client is one WebSocket connection. Before a successful join it may
// only send join messages; afterwards it speaks for exactly one player.
type Client struct {
	game *Game
	conn *websocket.Conn
	send chan []byte

	playerID     string // set from readPump only
	joinAttempts int

	closeOnce   sync.Once
	closed      chan struct{}
	closeReason string
}

func newClient(game *Game, conn *websocket.Conn) *Client {
	return &Client{
		game:   game,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// Enqueue hands a message to the write pump without blocking. False
// means the buffer is full and the connection should be dropped.
func (c *Client) Enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close asks the write pump to send a close frame and tear down.
// Idempotent; the first reason wins.
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		c.closeReason = reason
		close(c.closed)
	})
}

// readPump pumps messages from the WebSocket connection into the game.
func (c *Client) readPump() {
	defer func() {
		if c.playerID != "" {
			c.game.Leave(c.playerID)
		}
		c.Close("")
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}
		if !c.handleMessage(data) {
			return
		}
	}
}

// writePump pumps queued messages out to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)
			if err := w.Close(); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.closeReason)
			c.conn.WriteMessage(websocket.CloseMessage, msg)
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound message. A malformed envelope or
// a message the connection may not send is a protocol error: the
// connection is dropped (false). Phase conflicts are reported back
// without touching state.
func (c *Client) handleMessage(data []byte) bool {
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		log.Printf("[WS] dropping connection, malformed message: %v", err)
		c.Close("malformed message")
		return false
	}

	if c.playerID == "" && msg.Type != protocol.MsgJoin {
		log.Printf("[WS] dropping connection, %s before join", msg.Type)
		c.Close("join first")
		return false
	}

	switch msg.Type {
	case protocol.MsgJoin:
		if c.playerID != "" {
			log.Printf("[WS] dropping connection, duplicate join from %s", c.playerID)
			c.Close("already joined")
			return false
		}
		var payload protocol.JoinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.Close("malformed join payload")
			return false
		}
		ok, reason := c.game.Join(c, payload.Name, payload.Password)
		if reason != "" {
			c.joinAttempts++
			c.sendMessage(protocol.MsgJoinRejected, protocol.JoinRejectedPayload{Reason: reason})
			if c.joinAttempts >= c.game.tuning.MaxJoinAttempts {
				c.Close("too many failed join attempts")
				return false
			}
			return true
		}
		c.playerID = ok.PlayerID
		return true

	case protocol.MsgMove:
		var payload protocol.MovePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.Close("malformed move payload")
			return false
		}
		c.game.Move(c.playerID, payload.DX, payload.DY)
		return true

	case protocol.MsgChat:
		var payload protocol.ChatPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.Close("malformed chat payload")
			return false
		}
		c.game.Chat(c.playerID, payload.Text)
		return true

	case protocol.MsgStartGame:
		var payload protocol.StartGamePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.Close("malformed start_game payload")
			return false
		}
		if reason := c.game.StartGame(c.playerID, payload.DurationMinutes); reason != "" {
			c.sendMessage(protocol.MsgSystem, protocol.SystemPayload{Text: reason})
		}
		return true

	default:
		log.Printf("[WS] dropping connection, unknown message type %q", msg.Type)
		c.Close("unknown message type")
		return false
	}
}

// sendMessage encodes and enqueues a message for this connection only.
func (c *Client) sendMessage(msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		log.Printf("[WS] encode %s failed: %v", msgType, err)
		return
	}
	c.Enqueue(data)
}
