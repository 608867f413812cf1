package ws

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Event represents a WebSocket event sent to monitor clients.
type Event struct {
	Type  string      `json:"type"` // "new_message", "subscribed"
	Data  interface{} `json:"data"`
	phone string
}

// Hub maintains the set of active monitor clients and broadcasts chat messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run is the hub's event loop; it returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(event.phone) {
					continue
				}
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected monitors.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a new_message event to all monitors following the phone.
// The message is dropped when the hub is saturated.
func (h *Hub) BroadcastMessage(msg entity.ChatMessage) {
	select {
	case h.broadcast <- &Event{Type: "new_message", Data: msg, phone: msg.Phone}:
	default:
		h.log.Warn("broadcast queue full, message dropped", sl.Phone(msg.Phone))
	}
}

// clientEvent represents an incoming WebSocket message from a monitor.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	switch event.Type {
	case "subscribe":
		var data struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("failed to parse subscribe data", sl.Err(err))
			return
		}
		phone := ""
		if data.Phone != "" {
			phone = chat.NormalizePhone(data.Phone)
		}
		client.follow(phone)
		h.log.Debug("monitor subscribed",
			slog.String("username", client.username),
			sl.Phone(phone),
		)

		reply, _ := json.Marshal(&Event{Type: "subscribed", Data: map[string]string{"phone": phone}})
		h.mu.RLock()
		if h.clients[client] {
			select {
			case client.send <- reply:
			default:
			}
		}
		h.mu.RUnlock()
	}
}
