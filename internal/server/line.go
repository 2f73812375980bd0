package server

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/protocol"
)

const (
	// Time allowed to write a line to the peer
	lineWriteWait = 10 * time.Second

	// Longest line accepted from a terminal client
	maxLineSize = 1024
)

var errLineTooLong = errors.New("line too long")

// LineSession is a player on a raw TCP connection typing one move per line
type LineSession struct {
	*session[string]
	conn net.Conn
}

// NewLineSession wraps an accepted TCP connection
func NewLineSession(conn net.Conn, outbox *Outbox[string], logger *log.Logger) *LineSession {
	s := &LineSession{conn: conn}
	s.session = newSession("line", conn.RemoteAddr().String(), outbox, protocol.FormatLine, conn.Close, logger)
	return s
}

// Start begins handling the connection
func (s *LineSession) Start() {
	go s.writePump()
	go s.readPump()
}

func (s *LineSession) readPump() {
	defer func() { _ = s.Close() }()

	r := bufio.NewReaderSize(s.conn, maxLineSize)
	oversize := false
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			s.logger.Debug("Read failed", "error", err)
			return
		}
		// Overlong lines are drained up to the newline and answered once
		if more {
			oversize = true
			continue
		}
		if oversize {
			oversize = false
			s.logger.Debug("Discarded overlong line", "limit", maxLineSize)
			s.hint(protocol.HintLine(errLineTooLong))
			continue
		}
		s.handleLine(string(chunk))
	}
}

// handleLine parses one line. Anything unparseable is answered with a hint
// and never reaches the coordinator.
func (s *LineSession) handleLine(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}

	seat := s.Seat()
	if seat < 0 {
		s.hint(protocol.LineHint + " waiting for the match to start")
		return
	}

	move, err := game.ParseLine(text, seat)
	if err != nil {
		s.logger.Debug("Malformed move", "seat", seat, "line", text, "error", err)
		s.hint(protocol.HintLine(err))
		return
	}
	s.offer(move)
}

func (s *LineSession) hint(text string) {
	if err := s.outbox.Push(s.ctx, text); err != nil {
		s.logger.Debug("Failed to queue hint", "error", err)
	}
}

func (s *LineSession) writePump() {
	defer func() { _ = s.Close() }()

	w := bufio.NewWriter(s.conn)
	for {
		select {
		case line := <-s.outbox.Messages():
			_ = s.conn.SetWriteDeadline(time.Now().Add(lineWriteWait))
			if _, err := w.WriteString(line + "\n"); err != nil {
				s.logger.Debug("Write failed", "error", err)
				return
			}
			// Batch whatever else is already queued into one flush
			if s.outbox.Len() > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				s.logger.Debug("Flush failed", "error", err)
				return
			}

		case <-s.Done():
			return
		}
	}
}
