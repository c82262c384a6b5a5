package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and routes change
// notifications to the sessions of the user they concern.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of user IDs to the set of that user's connected clients.
	sessions map[string]map[*Client]bool

	mu     sync.Mutex
	closed bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's registration loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.closed {
				close(client.Send)
				h.mu.Unlock()
				continue
			}
			h.clients[client] = true
			if h.sessions[client.UserID] == nil {
				h.sessions[client.UserID] = make(map[*Client]bool)
			}
			h.sessions[client.UserID][client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("total_clients", total).Str("user_id", client.UserID).Msg("Client connected")
		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSession(client)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("total_clients", total).Msg("Client disconnected")
		}
	}
}

// NotifyUser sends an {action, payload} message to every connected
// session of the given user. A nil hub silently drops notifications.
func (h *Hub) NotifyUser(userID, action string, payload interface{}) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[userID] {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.clients, client)
			delete(h.sessions[userID], client)
		}
	}
}

// Close disconnects every client and drops all further registrations
// and notifications. Called during graceful shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
	h.sessions = make(map[string]map[*Client]bool)
	log.Info().Msg("Websocket hub closed")
}

// removeSession drops the client from its user's session set. Caller
// must hold h.mu.
func (h *Hub) removeSession(client *Client) {
	if subs, ok := h.sessions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.sessions, client.UserID)
		}
	}
}
