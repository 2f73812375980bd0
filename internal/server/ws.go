package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/dominoes/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// WSSession is a player connected over WebSocket exchanging JSON envelopes
type WSSession struct {
	*session[*protocol.Envelope]
	conn *websocket.Conn
}

// NewWSSession wraps an upgraded WebSocket connection
func NewWSSession(conn *websocket.Conn, name string, outbox *Outbox[*protocol.Envelope], logger *log.Logger) *WSSession {
	s := &WSSession{conn: conn}
	s.session = newSession("websocket", name, outbox, protocol.FromMessage, s.closeConn, logger)
	return s
}

// closeConn says goodbye with a close frame before dropping the socket
func (s *WSSession) closeConn() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return s.conn.Close()
}

// Start begins handling the connection
func (s *WSSession) Start() {
	go s.writePump()
	go s.readPump()
}

func (s *WSSession) readPump() {
	defer func() { _ = s.Close() }()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env protocol.Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		handleEnvelope(s.session, &env)
	}
}

func (s *WSSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.Close()
	}()

	for {
		select {
		case env := <-s.outbox.Messages():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(env); err != nil {
				s.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.Done():
			return
		}
	}
}

// handleEnvelope turns a client envelope into a pending move. Envelopes
// that do not decode to a move are logged and dropped.
func handleEnvelope(s *session[*protocol.Envelope], env *protocol.Envelope) {
	switch env.Type {
	case protocol.TypeMove:
		seat := s.Seat()
		if seat < 0 {
			s.logger.Debug("Move before seating, dropped")
			return
		}
		move, err := protocol.DecodeMove(env, seat)
		if err != nil {
			s.logger.Debug("Malformed move", "seat", seat, "error", err)
			return
		}
		s.offer(move)

	case protocol.TypeJoin:
		// Already joined

	default:
		s.logger.Debug("Unexpected message type", "type", env.Type)
	}
}
