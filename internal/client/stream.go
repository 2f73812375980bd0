package client

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"github.com/charmbracelet/log"
	"golang.org/x/net/http2"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
	"github.com/lox/dominoes/internal/protocol"
)

// StreamClient plays over a Connect bidirectional stream
type StreamClient struct {
	serverURL string
	name      string
	logger    *log.Logger

	sendMu   sync.Mutex
	stream   *connect.BidiStreamForClient[protocol.Envelope, protocol.Envelope]
	messages chan match.Message
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// NewStreamClient creates a client for the streaming transport
func NewStreamClient(serverURL, name string, logger *log.Logger) *StreamClient {
	return &StreamClient{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		name:      name,
		logger:    logger.WithPrefix("stream"),
		messages:  make(chan match.Message, 256),
	}
}

// h2cClient speaks HTTP/2 without TLS, which bidirectional streams need
// against a plain listener
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

// Connect opens the stream and sends the join envelope
func (c *StreamClient) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL, "name", c.name)

	httpClient := http.DefaultClient
	if strings.HasPrefix(c.serverURL, "http://") {
		httpClient = h2cClient()
	}

	rpc := connect.NewClient[protocol.Envelope, protocol.Envelope](
		httpClient,
		c.serverURL+protocol.PlayProcedure,
		connect.WithCodec(protocol.Codec{}),
	)

	// The stream outlives ctx, which only bounds the join
	streamCtx, cancel := context.WithCancel(context.Background())
	c.ctx, c.cancel = streamCtx, cancel
	c.stream = rpc.CallBidiStream(streamCtx)

	join, err := protocol.JoinEnvelope(c.name)
	if err != nil {
		cancel()
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- c.send(join) }()
	select {
	case err := <-errCh:
		if err != nil {
			cancel()
			return err
		}
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	go c.readPump()
	return nil
}

func (c *StreamClient) readPump() {
	defer close(c.messages)

	for {
		env, err := c.stream.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) && connect.CodeOf(err) != connect.CodeCanceled {
				c.logger.Error("Stream error", "error", err)
			}
			return
		}

		msg, err := protocol.ToMessage(env)
		if err != nil {
			c.logger.Debug("Ignoring message", "type", env.Type, "error", err)
			continue
		}
		select {
		case c.messages <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *StreamClient) send(env *protocol.Envelope) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.stream.Send(env)
}

// Messages yields server messages in arrival order
func (c *StreamClient) Messages() <-chan match.Message {
	return c.messages
}

// Play sends a structured move
func (c *StreamClient) Play(ctx context.Context, m game.Move) error {
	env, err := protocol.MoveEnvelope(m)
	if err != nil {
		return err
	}
	return c.send(env)
}

// PlayText sends a move typed in either line grammar
func (c *StreamClient) PlayText(ctx context.Context, text string) error {
	env, err := protocol.TextMoveEnvelope(text)
	if err != nil {
		return err
	}
	return c.send(env)
}

// Close ends the stream
func (c *StreamClient) Close() error {
	c.once.Do(func() {
		if c.stream != nil {
			c.sendMu.Lock()
			_ = c.stream.CloseRequest()
			c.sendMu.Unlock()
		}
		if c.cancel != nil {
			c.cancel()
		}
	})
	return nil
}
