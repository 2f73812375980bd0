package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"connectrpc.com/connect"
	"github.com/charmbracelet/log"

	"github.com/lox/dominoes/internal/protocol"
)

type playStream = connect.BidiStream[protocol.Envelope, protocol.Envelope]

// StreamSession is a player on a Connect bidirectional stream. The first
// envelope the client sends must be a join.
type StreamSession struct {
	*session[*protocol.Envelope]
	stream *playStream
}

// NewStreamSession wraps an accepted stream
func NewStreamSession(stream *playStream, name string, outbox *Outbox[*protocol.Envelope], logger *log.Logger) *StreamSession {
	s := &StreamSession{stream: stream}
	s.session = newSession("stream", name, outbox, protocol.FromMessage, nil, logger)
	return s
}

func (s *StreamSession) readPump() {
	defer func() { _ = s.Close() }()

	for {
		env, err := s.stream.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("Stream receive failed", "error", err)
			}
			return
		}
		handleEnvelope(s.session, env)
	}
}

// writePump runs on the handler goroutine; the stream ends when it returns
func (s *StreamSession) writePump(ctx context.Context) {
	defer func() { _ = s.Close() }()

	for {
		select {
		case env := <-s.outbox.Messages():
			if err := s.stream.Send(env); err != nil {
				s.logger.Debug("Stream send failed", "error", err)
				return
			}
		case <-s.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

// streamHandler mounts the Play procedure
func (s *Server) streamHandler() (string, http.Handler) {
	return protocol.PlayProcedure, connect.NewBidiStreamHandler(
		protocol.PlayProcedure,
		s.handlePlay,
		connect.WithCodec(protocol.Codec{}),
	)
}

func (s *Server) handlePlay(ctx context.Context, stream *playStream) error {
	first, err := stream.Receive()
	if err != nil {
		return err
	}
	if first.Type != protocol.TypeJoin {
		return connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("first message must be %q, got %q", protocol.TypeJoin, first.Type))
	}

	var join protocol.JoinData
	if len(first.Data) > 0 {
		if err := first.Decode(&join); err != nil {
			return connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	sess := NewStreamSession(stream, join.Name,
		NewOutbox[*protocol.Envelope](s.sendBuffer, s.sendTimeout, s.clock), s.logger)
	s.admit(sess)

	go sess.readPump()
	sess.writePump(ctx)
	return nil
}
