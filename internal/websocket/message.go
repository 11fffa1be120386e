package websocket

import "encoding/json"

// Actions pushed to clients.
const (
	ActionLedgerChanged = "ledger.changed"
	ActionPong          = "pong"
	ActionError         = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// LedgerChange describes which part of a user's books changed.
type LedgerChange struct {
	Resource string `json:"resource"` // "account", "entry" or "chart"
	Op       string `json:"op"`       // "create", "update" or "delete"
	ID       string `json:"id"`
}

// NewLedgerChangedMessage builds the notification sent after a mutation.
func NewLedgerChangedMessage(resource, op, id string) Message {
	return Message{Action: ActionLedgerChanged, Payload: LedgerChange{Resource: resource, Op: op, ID: id}}
}

// NewChartChangedMessage tells every client that maintenance changed charts of accounts.
func NewChartChangedMessage() Message {
	return NewLedgerChangedMessage("chart", "update", "")
}

// NewErrorMessage encodes an error for a single client.
func NewErrorMessage(msg string) []byte {
	b, _ := json.Marshal(Message{Action: ActionError, Payload: map[string]string{"error": msg}})
	return b
}
