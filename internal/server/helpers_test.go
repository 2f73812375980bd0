package server

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/lox/dominoes/internal/match"
	"github.com/lox/dominoes/internal/protocol"
	"github.com/lox/dominoes/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// startTestServer runs a server's HTTP handler and match manager until the
// test ends
func startTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()

	srv := NewServer(testLogger(), randutil.New(42), opts...)
	ts := httptest.NewServer(srv.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Manager().Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		srv.closeAll()
		<-done
		ts.Close()
	})
	return srv, ts
}

// player abstracts over the test clients of each transport
type player interface {
	next(t *testing.T) match.Message
	move(t *testing.T, env *protocol.Envelope)
	close()
}

type wsPlayer struct {
	conn *websocket.Conn
}

func dialWS(t *testing.T, ts *httptest.Server, name string) *wsPlayer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsPlayer{conn: conn}
}

func (p *wsPlayer) next(t *testing.T) match.Message {
	t.Helper()
	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env protocol.Envelope
	require.NoError(t, p.conn.ReadJSON(&env))
	msg, err := protocol.ToMessage(&env)
	require.NoError(t, err)
	return msg
}

func (p *wsPlayer) move(t *testing.T, env *protocol.Envelope) {
	t.Helper()
	require.NoError(t, p.conn.WriteJSON(env))
}

func (p *wsPlayer) close() {
	_ = p.conn.Close()
}

type streamPlayer struct {
	stream *connect.BidiStreamForClient[protocol.Envelope, protocol.Envelope]
	cancel context.CancelFunc
}

func h2cClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}

func dialStream(t *testing.T, ts *httptest.Server, name string) *streamPlayer {
	t.Helper()
	client := connect.NewClient[protocol.Envelope, protocol.Envelope](
		h2cClient(),
		ts.URL+protocol.PlayProcedure,
		connect.WithCodec(protocol.Codec{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	stream := client.CallBidiStream(ctx)

	join, err := protocol.JoinEnvelope(name)
	require.NoError(t, err)
	require.NoError(t, stream.Send(join))

	p := &streamPlayer{stream: stream, cancel: cancel}
	t.Cleanup(p.close)
	return p
}

func (p *streamPlayer) next(t *testing.T) match.Message {
	t.Helper()
	type result struct {
		env *protocol.Envelope
		err error
	}
	ch := make(chan result, 1)
	go func() {
		env, err := p.stream.Receive()
		ch <- result{env, err}
	}()

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		msg, err := protocol.ToMessage(r.env)
		require.NoError(t, err)
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stream message")
		return nil
	}
}

func (p *streamPlayer) move(t *testing.T, env *protocol.Envelope) {
	t.Helper()
	require.NoError(t, p.stream.Send(env))
}

func (p *streamPlayer) close() {
	_ = p.stream.CloseRequest()
	p.cancel()
}
