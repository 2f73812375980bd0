package protocol

import (
	"encoding/json"
	"time"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
)

// MessageType identifies the payload carried by an Envelope
type MessageType string

const (
	// Client -> Server
	TypeJoin MessageType = "join"
	TypeMove MessageType = "move"

	// Server -> Client
	TypeInit     MessageType = "init"
	TypeYourTurn MessageType = "your_turn"
	TypeUpdate   MessageType = "update"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Envelope is the JSON frame shared by the WebSocket and streaming transports
type Envelope struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope wraps data with the current timestamp
func NewEnvelope(messageType MessageType, data any) (*Envelope, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Envelope{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the payload into v
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(e.Data, v)
}

// Server -> Client payloads

// InitData carries a seat's number and starting hand
type InitData struct {
	Seat int             `json:"seat"`
	Hand []domino.Domino `json:"hand"`
}

// UpdateData describes a move another seat made
type UpdateData struct {
	Seat   int           `json:"seat"`
	Side   game.Side     `json:"side"`
	Domino domino.Domino `json:"domino"`
}

// Client -> Server payloads

// JoinData opens a streaming session. WebSocket clients take the name from
// the query string instead.
type JoinData struct {
	Name string `json:"name,omitempty"`
}

// MoveData is a move in structured form, or a raw line in Text using
// the same grammar as the line transport
type MoveData struct {
	Side     string `json:"side,omitempty"`
	Seat     *int   `json:"seat,omitempty"`
	Position *int   `json:"position,omitempty"`
	Text     string `json:"text,omitempty"`
}
