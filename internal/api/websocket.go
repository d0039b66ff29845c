package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/game"
	"github.com/torcida/torcida/internal/relay"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Client is one websocket connection owned by this worker, identified
// by the fd the hub assigned to it.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	fd   int64

	mu     sync.Mutex
	closed bool
}

// enqueue queues one outbound frame. Returns false when the connection
// is already torn down or its buffer is full; the caller only logs.
// The closed check and the send happen under the same lock that
// closeSend takes, so a send can never hit a closed channel.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend marks the client torn down and closes its send channel.
// Idempotent.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub owns this worker's connections and pushes every relayed message
// to each of them. Connection handles (fds) are assigned here.
type Hub struct {
	log        *log.Logger
	game       *game.Game
	origin     string
	clients    map[int64]*Client
	broadcast  chan relay.Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	nextFD     atomic.Int64
}

// NewHub creates a hub for this worker. Origin is the relay identity
// used to mark vote events as self on the voter's own connection.
func NewHub(g *game.Game, origin string, logger *log.Logger) *Hub {
	return &Hub{
		log:        logger,
		game:       g,
		origin:     origin,
		clients:    make(map[int64]*Client),
		broadcast:  make(chan relay.Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.fd] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Printf("[hub] connection %d registered (%d total)", client.fd, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.fd]; ok {
				delete(h.clients, client.fd)
				client.closeSend()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.game.Disconnect(client.fd)
			h.log.Printf("[hub] connection %d unregistered (%d total)", client.fd, total)

		case msg := <-h.broadcast:
			h.push(msg)

		case <-ctx.Done():
			return
		}
	}
}

// Deliver queues a relayed message for every locally owned connection.
// It is the relay subscription handler.
func (h *Hub) Deliver(msg relay.Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Printf("[hub] broadcast queue full, dropping %s message", msg.Kind)
	}
}

// push fans one relayed message out to the local connections. State
// triggers become connection-specific snapshots; vote events get the
// self flag on the voter's own connection. Send failures are confined
// to the failing connection.
func (h *Hub) push(msg relay.Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	switch msg.Kind {
	case relay.KindState:
		for _, c := range clients {
			h.sendSnapshot(c)
		}
	case relay.KindVoted:
		for _, c := range clients {
			h.sendJSON(c, domain.Event{
				Type:   domain.EventVoted,
				Status: domain.ResultSuccess,
				Payload: domain.VotedPayload{
					Self:     msg.Origin == h.origin && msg.VoterFD == c.fd,
					Team:     msg.Team,
					Features: msg.Features,
				},
			})
		}
	case relay.KindConnected, relay.KindDisconnected:
		event := domain.Event{
			Type:    msg.Kind,
			Status:  domain.ResultSuccess,
			Payload: domain.MessagePayload{Message: msg.Message},
		}
		for _, c := range clients {
			h.sendJSON(c, event)
		}
	default:
		h.log.Printf("[hub] unknown relayed message kind %q", msg.Kind)
	}
}

// sendSnapshot pushes the connection-specific full state payload.
func (h *Hub) sendSnapshot(c *Client) {
	h.sendJSON(c, h.game.Snapshot(c.fd))
}

func (h *Hub) sendJSON(c *Client, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Printf("[hub] marshaling payload: %v", err)
		return
	}
	if !c.enqueue(data) {
		// Gone or a slow consumer; either way the read pump owns the
		// teardown. Dropping here keeps one connection from blocking
		// the fanout.
		h.log.Printf("[hub] dropping message for connection %d", c.fd)
	}
}

// ClientCount returns the number of locally owned connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket registers the player identified by the path token,
// upgrades the connection and starts its pumps. Registration rejections
// refuse the handshake before the upgrade completes.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	token := req.PathValue("token")
	fd := r.hub.nextFD.Add(1)

	if _, err := r.game.Connect(fd, token); err != nil {
		switch {
		case errors.Is(err, game.ErrDuplicate):
			writeError(w, http.StatusConflict, "player already connected")
		case errors.Is(err, game.ErrCapacity):
			writeError(w, http.StatusServiceUnavailable, "server is full")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Printf("[hub] websocket upgrade error: %v", err)
		r.game.Disconnect(fd)
		return
	}

	client := &Client{
		hub:  r.hub,
		conn: conn,
		send: make(chan []byte, 256),
		fd:   fd,
	}
	r.hub.register <- client

	go client.writePump()
	go client.readPump()

	// The newcomer gets the current state right away instead of
	// waiting for the next phase broadcast.
	r.hub.sendSnapshot(client)
}

// readPump reads inbound messages and dispatches them (and handles close)
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				c.hub.log.Printf("[hub] websocket error on connection %d: %v", c.fd, err)
			}
			break
		}
		c.hub.dispatch(c, data)
	}
}

// writePump sends queued messages to the websocket
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
