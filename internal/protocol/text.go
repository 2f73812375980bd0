package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

// Line transport keywords
const (
	LineInit     = "init"
	LineYourTurn = "your-turn"
	LineUpdate   = "update"
	LineHint     = "?"
)

// FormatLine renders a core message as one line of text, without the
// trailing newline:
//
//	init seat=0 hand=3:1 5:6 0:0
//	your-turn
//	update seat=2 side=left domino=1:3
func FormatLine(msg match.Message) (string, error) {
	switch m := msg.(type) {
	case match.Init:
		return fmt.Sprintf("%s seat=%d hand=%s", LineInit, m.Seat, domino.FormatAll(m.Hand)), nil
	case match.YourTurn:
		return LineYourTurn, nil
	case match.Update:
		return fmt.Sprintf("%s seat=%d side=%s domino=%s", LineUpdate, m.Seat, m.Side, m.Domino), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownMessageType, msg)
	}
}

// ParseLine is the inverse of FormatLine
func ParseLine(line string) (match.Message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrUnknownMessageType)
	}

	switch fields[0] {
	case LineYourTurn:
		return match.YourTurn{}, nil

	case LineInit:
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed init line %q", line)
		}
		seat, err := intField(fields[1], "seat")
		if err != nil {
			return nil, err
		}
		first, ok := strings.CutPrefix(fields[2], "hand=")
		if !ok {
			return nil, fmt.Errorf("malformed init line %q", line)
		}

		tokens := append([]string{first}, fields[3:]...)
		hand := make([]domino.Domino, 0, len(tokens))
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			d, err := domino.Parse(tok)
			if err != nil {
				return nil, err
			}
			hand = append(hand, d)
		}
		return match.Init{Hand: hand, Seat: seat}, nil

	case LineUpdate:
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed update line %q", line)
		}
		seat, err := intField(fields[1], "seat")
		if err != nil {
			return nil, err
		}
		sideText, ok := strings.CutPrefix(fields[2], "side=")
		if !ok {
			return nil, fmt.Errorf("malformed update line %q", line)
		}
		side, err := game.ParseSide(sideText)
		if err != nil {
			return nil, err
		}
		tileText, ok := strings.CutPrefix(fields[3], "domino=")
		if !ok {
			return nil, fmt.Errorf("malformed update line %q", line)
		}
		tile, err := domino.Parse(tileText)
		if err != nil {
			return nil, err
		}
		return match.Update{Update: game.Update{Side: side, Seat: seat, Domino: tile}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, fields[0])
	}
}

// HintLine is sent back on the line transport when a move cannot be parsed
func HintLine(err error) string {
	return fmt.Sprintf("%s %v (expected \"left|right <position>\" or \"left|right <seat> <position>\")", LineHint, err)
}

func intField(field, key string) (int, error) {
	v, ok := strings.CutPrefix(field, key+"=")
	if !ok {
		return 0, fmt.Errorf("expected %s=<n>, got %q", key, field)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
