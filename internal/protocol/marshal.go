package protocol

import (
	"errors"
	"fmt"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

var (
	// ErrUnknownMessageType is returned for envelopes or messages this
	// package cannot convert
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrEmptyPayload is returned when an envelope that needs data has none
	ErrEmptyPayload = errors.New("empty payload")
)

// FromMessage converts a core message into its wire envelope
func FromMessage(msg match.Message) (*Envelope, error) {
	switch m := msg.(type) {
	case match.Init:
		return NewEnvelope(TypeInit, InitData{Seat: m.Seat, Hand: m.Hand})
	case match.YourTurn:
		return NewEnvelope(TypeYourTurn, nil)
	case match.Update:
		return NewEnvelope(TypeUpdate, UpdateData{Seat: m.Seat, Side: m.Side, Domino: m.Domino})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, msg)
	}
}

// ToMessage converts a server envelope back into a core message
func ToMessage(env *Envelope) (match.Message, error) {
	switch env.Type {
	case TypeInit:
		var data InitData
		if err := env.Decode(&data); err != nil {
			return nil, fmt.Errorf("decode init: %w", err)
		}
		return match.Init{Hand: data.Hand, Seat: data.Seat}, nil
	case TypeYourTurn:
		return match.YourTurn{}, nil
	case TypeUpdate:
		var data UpdateData
		if err := env.Decode(&data); err != nil {
			return nil, fmt.Errorf("decode update: %w", err)
		}
		return match.Update{Update: game.Update{Side: data.Side, Seat: data.Seat, Domino: data.Domino}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

// MoveEnvelope builds the client envelope for a structured move
func MoveEnvelope(m game.Move) (*Envelope, error) {
	seat, position := m.Seat, m.Position
	return NewEnvelope(TypeMove, MoveData{
		Side:     m.Side.String(),
		Seat:     &seat,
		Position: &position,
	})
}

// TextMoveEnvelope builds the client envelope for a move typed as text
func TextMoveEnvelope(text string) (*Envelope, error) {
	return NewEnvelope(TypeMove, MoveData{Text: text})
}

// Move resolves the payload into a move for the given seat. A seat named in
// the payload is kept as is so the engine can reject it if it is not the
// sender's turn. Malformed payloads return game.ErrMalformedMove.
func (d MoveData) Move(seat int) (game.Move, error) {
	if d.Text != "" {
		return game.ParseLine(d.Text, seat)
	}

	side, err := game.ParseSide(d.Side)
	if err != nil {
		return game.Move{}, fmt.Errorf("%w: %v", game.ErrMalformedMove, err)
	}
	if d.Position == nil || *d.Position < 0 {
		return game.Move{}, fmt.Errorf("%w: missing or negative position", game.ErrMalformedMove)
	}

	m := game.Move{Side: side, Seat: seat, Position: *d.Position}
	if d.Seat != nil {
		if *d.Seat < 0 {
			return game.Move{}, fmt.Errorf("%w: negative seat", game.ErrMalformedMove)
		}
		m.Seat = *d.Seat
	}
	return m, nil
}

// DecodeMove reads a move envelope sent by the player in seat
func DecodeMove(env *Envelope, seat int) (game.Move, error) {
	if env.Type != TypeMove {
		return game.Move{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	var data MoveData
	if err := env.Decode(&data); err != nil {
		return game.Move{}, fmt.Errorf("%w: %w", game.ErrMalformedMove, err)
	}
	return data.Move(seat)
}
