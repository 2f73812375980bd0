package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/dominoes/internal/domino"
)

// Side names an end of the board
type Side int

const (
	Left Side = iota
	Right
)

// String returns the wire name of the side
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseSide converts "left" or "right" (any case) to a Side
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("invalid side %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Side) MarshalText() ([]byte, error) {
	if s != Left && s != Right {
		return nil, fmt.Errorf("invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// Move asks to play the tile at Position in Seat's hand onto Side of the board
type Move struct {
	Side     Side `json:"side"`
	Seat     int  `json:"seat"`
	Position int  `json:"position"`
}

// String renders the move in the three token grammar
func (m Move) String() string {
	return fmt.Sprintf("%s %d %d", m.Side, m.Seat, m.Position)
}

// Update is the outcome of an accepted move: the tile as it now lies on the board
type Update struct {
	Side   Side          `json:"side"`
	Seat   int           `json:"seat"`
	Domino domino.Domino `json:"domino"`
}

// ErrMalformedMove is returned when move text does not follow either grammar
var ErrMalformedMove = errors.New("malformed move")

// ParseMove parses the two token grammar "left|right <position>".
// The seat comes from the session the text arrived on.
func ParseMove(text string, seat int) (Move, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Move{}, fmt.Errorf("%w: expected \"left|right <position>\", got %q", ErrMalformedMove, text)
	}

	side, err := ParseSide(fields[0])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}
	pos, err := parseIndex(fields[1])
	if err != nil {
		return Move{}, err
	}

	return Move{Side: side, Seat: seat, Position: pos}, nil
}

// ParseSeatedMove parses the three token grammar "left|right <seat> <position>"
// used by transports that cannot bind a seat to a connection.
func ParseSeatedMove(text string) (Move, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Move{}, fmt.Errorf("%w: expected \"left|right <seat> <position>\", got %q", ErrMalformedMove, text)
	}

	side, err := ParseSide(fields[0])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}
	seat, err := parseIndex(fields[1])
	if err != nil {
		return Move{}, err
	}
	pos, err := parseIndex(fields[2])
	if err != nil {
		return Move{}, err
	}

	return Move{Side: side, Seat: seat, Position: pos}, nil
}

// ParseLine accepts either grammar. The two token form takes its seat from
// the caller.
func ParseLine(text string, seat int) (Move, error) {
	if len(strings.Fields(text)) == 3 {
		return ParseSeatedMove(text)
	}
	return ParseMove(text, seat)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrMalformedMove, s)
	}
	return int(n), nil
}
