package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/raghav0014/AI-Feedback/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 64
)

// Client is one connected websocket peer with its room memberships.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool
	mu    sync.Mutex
}

// Hub relays messages to connected clients, either to everyone or to a
// labeled room subset. Delivery is best effort: there is no ordering
// guarantee across clients and nothing is replayed to a client that was
// disconnected — clients request fresh state after reconnecting.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Handle runs the read loop for one connection. Fiber invokes it per
// upgraded connection and it blocks until the peer goes away.
func (h *Hub) Handle(conn *websocket.Conn) {
	client := &Client{
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		rooms: make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	done := make(chan struct{})
	go client.writePump(done)

	defer func() {
		close(done)
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		h.handleMessage(client, &envelope)
	}
}

func (h *Hub) handleMessage(client *Client, envelope *Envelope) {
	switch envelope.Type {
	case MsgTypeHeartbeat:
		client.enqueue(NewEnvelope(MsgTypeHeartbeatAck, nil))
	case MsgTypeJoinRoom:
		if room := roomName(envelope.Data); room != "" {
			client.mu.Lock()
			client.rooms[room] = true
			client.mu.Unlock()
		}
	case MsgTypeLeaveRoom:
		if room := roomName(envelope.Data); room != "" {
			client.mu.Lock()
			delete(client.rooms, room)
			client.mu.Unlock()
		}
	}
}

func roomName(data interface{}) string {
	payload, ok := data.(map[string]interface{})
	if !ok {
		return ""
	}
	room, _ := payload["room"].(string)
	return room
}

// Broadcast sends the envelope to every connected client.
func (h *Hub) Broadcast(envelope *Envelope) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Failed to encode broadcast: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.enqueueRaw(raw)
	}
}

// BroadcastRoom sends the envelope to clients that joined the room.
func (h *Hub) BroadcastRoom(room string, envelope *Envelope) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Failed to encode broadcast: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.mu.Lock()
		member := client.rooms[room]
		client.mu.Unlock()
		if member {
			client.enqueueRaw(raw)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastReviewUpdate implements services.Broadcaster.
func (h *Hub) BroadcastReviewUpdate(review *models.Review) {
	h.Broadcast(NewEnvelope(MsgTypeReviewUpdate, review))
}

// Notify implements services.Notifier with a broadcast notification.
func (h *Hub) Notify(level, message string) {
	h.Broadcast(NewEnvelope(MsgTypeNotification, map[string]string{
		"level":   level,
		"message": message,
	}))
}

// BroadcastAnalytics pushes a fresh analytics report to the admin room.
func (h *Hub) BroadcastAnalytics(report interface{}) {
	h.BroadcastRoom("admin", NewEnvelope(MsgTypeAnalyticsUpdate, report))
}

// enqueue serializes and queues an envelope for this client only.
func (c *Client) enqueue(envelope *Envelope) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	c.enqueueRaw(raw)
}

// enqueueRaw drops the message if the client's buffer is full; a slow
// consumer must not stall the hub.
func (c *Client) enqueueRaw(raw []byte) {
	select {
	case c.send <- raw:
	default:
	}
}

// writePump drains the send channel onto the connection and pings on an
// interval to detect half-open connections.
func (c *Client) writePump(done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case raw := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
