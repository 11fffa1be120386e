package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// userMessage is addressed to every client of userID, or only to client when set.
type userMessage struct {
	userID  string
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and routes messages to them by user.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages for every connected client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to one user's clients.
	direct chan userMessage

	// A map of user IDs to the set of that user's clients.
	subscriptions map[string]map[*Client]bool

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		direct:        make(chan userMessage, 64),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Debug().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Debug().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case m := <-h.direct:
			if m.client != nil {
				if h.clients[m.client] {
					h.deliver(m.client, m.payload)
				}
				continue
			}
			for client := range h.subscriptions[m.userID] {
				h.deliver(client, m.payload)
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Join registers a client unless the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client unless the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Notify queues msg for every connection of the given user. It never blocks
// the caller; when the queue is full the message is dropped.
func (h *Hub) Notify(userID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return
	}
	h.enqueue(userMessage{userID: userID, payload: payload})
}

// BroadcastMessage sends msg to every connected client. It returns without
// sending once the hub has stopped.
func (h *Hub) BroadcastMessage(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.Broadcast <- payload:
	case <-h.done:
	}
}

// Reply queues a raw message for a single client if it is still registered.
func (h *Hub) Reply(client *Client, payload []byte) {
	h.enqueue(userMessage{userID: client.UserID, client: client, payload: payload})
}

func (h *Hub) enqueue(m userMessage) {
	select {
	case h.direct <- m:
	default:
		log.Warn().Str("user_id", m.userID).Msg("Websocket queue full, dropping message")
	}
}

// deliver hands a message to a client, dropping clients that cannot keep up.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}
