package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"studyhub/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSessions MessageType = "sessions"
	MsgError    MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections per user. A user may hold several connections.
type Hub struct {
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	log *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	Principal *model.Principal
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message for every connection of one user
type BroadcastMessage struct {
	UserID  string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		log:        log.Named("ws"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			id := conn.Principal.UserID
			if h.conns[id] == nil {
				h.conns[id] = make(map[*Connection]struct{})
			}
			h.conns[id][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("client connected", zap.String("user", id))

		case conn := <-h.unregister:
			h.mu.Lock()
			id := conn.Principal.UserID
			if set, ok := h.conns[id]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, id)
					}
					h.log.Debug("client disconnected", zap.String("user", id))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("encode message failed", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.UserID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Principals returns one principal per connected user.
func (h *Hub) Principals() []*model.Principal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*model.Principal, 0, len(h.conns))
	for _, set := range h.conns {
		for conn := range set {
			out = append(out, conn.Principal)
			break
		}
	}
	return out
}

// SendToUser queues a message for every connection of userID
func (h *Hub) SendToUser(userID string, msgType MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.broadcast <- &BroadcastMessage{
		UserID: userID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
	return nil
}
