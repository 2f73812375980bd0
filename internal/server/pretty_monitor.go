package server

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lox/dominoes/internal/game"
)

const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// PrettyMonitor prints a running commentary of every match. Lines from
// concurrent matches are prefixed with a short match ID.
type PrettyMonitor struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
	moves  map[string]int
}

// NewPrettyMonitor creates a monitor writing to writer, or stdout when nil
func NewPrettyMonitor(writer io.Writer, color bool) *PrettyMonitor {
	if writer == nil {
		writer = os.Stdout
	}
	return &PrettyMonitor{
		writer: writer,
		color:  color,
		moves:  make(map[string]int),
	}
}

func (p *PrettyMonitor) OnMatchStart(matchID string, seats int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.moves[matchID] = 0
	fmt.Fprintln(p.writer, p.colorize(fmt.Sprintf("=== Match %s started (%d seats) ===", shortID(matchID), seats), colorBold+colorMagenta))
}

func (p *PrettyMonitor) OnMatchEnd(matchID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	moves := p.moves[matchID]
	delete(p.moves, matchID)

	reason := endReason(err)
	color := colorCyan
	if reason != "finished" {
		color = colorRed
	}
	fmt.Fprintf(p.writer, "%s %s after %d moves\n",
		p.colorize(fmt.Sprintf("=== Match %s", shortID(matchID)), colorBold+colorMagenta),
		p.colorize(reason, color),
		moves)
}

func (p *PrettyMonitor) OnMoveAccepted(matchID string, update game.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.moves[matchID]++
	fmt.Fprintf(p.writer, "[%s] #%-3d seat %d %s %s\n",
		shortID(matchID),
		p.moves[matchID],
		update.Seat,
		p.colorize(fmt.Sprintf("%-5s", update.Side), colorDim),
		p.colorize(update.Domino.String(), colorBold+colorGreen))
}

func (p *PrettyMonitor) OnMoveRejected(matchID string, seat int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "[%s] seat %d %s\n", shortID(matchID), seat, p.colorize("rejected: "+err.Error(), colorRed))
}

func (p *PrettyMonitor) OnSendFailed(string, int, error) {}

func (p *PrettyMonitor) colorize(text, color string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + colorReset
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
