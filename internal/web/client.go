package web

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var errClientGone = errors.New("websocket client disconnected")

// Client represents a WebSocket client
type Client struct {
	ID     string
	hub    *Hub
	srv    *Server
	conn   *websocket.Conn
	send   chan *WebMessage
	done   chan struct{}
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, srv *Server, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Client{
		ID:     id,
		hub:    hub,
		srv:    srv,
		conn:   conn,
		send:   make(chan *WebMessage, 256),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.Global().WithPrefix("ws:" + id[:8]),
	}
}

// closeSend stops the write pump. Pending chat streams observe it and stop.
func (c *Client) closeSend() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// trySend queues message without blocking.
func (c *Client) trySend(message *WebMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// deliver queues message, waiting for buffer space until the client goes away.
func (c *Client) deliver(message *WebMessage) bool {
	message.Timestamp = time.Now()
	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	}
}

// ReadPump pumps messages from the WebSocket connection to the assistant
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("read error: %v", err)
			}
			return
		}

		var msg WebMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.deliver(&WebMessage{Type: MessageTypeError, Content: "invalid message: " + err.Error()})
			continue
		}
		c.handleMessage(&msg)
	}
}

// WritePump pumps queued messages to the WebSocket connection and keeps it
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Debug("write failed: %v", err)
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage handles incoming messages from the client. Each chat query
// is answered on its own goroutine, so several can be in flight and their
// replies may finish in any order.
func (c *Client) handleMessage(msg *WebMessage) {
	switch msg.Type {
	case MessageTypeChat:
		query := strings.TrimSpace(msg.Content)
		id := msg.ID
		if id == "" {
			id = uuid.NewString()
		}
		switch {
		case query == "":
			c.deliver(&WebMessage{Type: MessageTypeError, ID: id, Content: "query is required"})
		case len(query) > consts.MaxQueryLength:
			c.deliver(&WebMessage{Type: MessageTypeError, ID: id, Content: "query is too long"})
		default:
			go c.answer(id, query)
		}

	default:
		c.log.Warn("unknown message type: %s", msg.Type)
		c.deliver(&WebMessage{Type: MessageTypeError, ID: msg.ID, Content: "unknown message type: " + msg.Type})
	}
}

func (c *Client) answer(id, query string) {
	ctx, cancel := context.WithTimeout(c.ctx, consts.AssistantTimeout)
	defer cancel()

	reply := c.srv.Solver().Stream(ctx, query, func(chunk string) error {
		if !c.deliver(&WebMessage{Type: MessageTypeChunk, ID: id, Content: chunk}) {
			return errClientGone
		}
		return nil
	})
	c.srv.recordAI(query)

	if reply.IsError {
		c.deliver(&WebMessage{Type: MessageTypeError, ID: id, Content: reply.Text})
		return
	}
	c.deliver(&WebMessage{Type: MessageTypeDone, ID: id, Content: reply.Text})
}
