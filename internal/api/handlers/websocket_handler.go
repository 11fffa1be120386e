package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	ws "github.com/isdelr/ledger-be/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests to live-update connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser origins are
// checked against allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, uid)
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump(h.handleIncomingWSMessage)
	h.hub.Leave(client)
}

// handleIncomingWSMessage answers keepalive pings; the channel is otherwise push-only.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Err(err).Str("user_id", client.UserID).Msg("Error decoding websocket message")
		h.hub.Reply(client, ws.NewErrorMessage("invalid message"))
		return
	}

	switch msg.Action {
	case "ping":
		b, _ := json.Marshal(ws.Message{Action: ws.ActionPong})
		h.hub.Reply(client, b)
	default:
		log.Debug().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.hub.Reply(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}
