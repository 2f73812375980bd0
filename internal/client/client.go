package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
	"github.com/lox/dominoes/internal/protocol"
)

// Transport names accepted by Dial
const (
	TransportWebSocket = "websocket"
	TransportStream    = "stream"
)

// ErrNotConnected is returned when sending on a closed client
var ErrNotConnected = errors.New("not connected")

// Player is a connection to a domino server seen from the player's side.
// Messages is closed when the connection ends.
type Player interface {
	Messages() <-chan match.Message
	Play(ctx context.Context, m game.Move) error
	PlayText(ctx context.Context, text string) error
	Close() error
}

// Dial connects over the named transport
func Dial(ctx context.Context, transport, serverURL, name string, logger *log.Logger) (Player, error) {
	switch transport {
	case TransportWebSocket, "ws", "":
		c := NewClient(serverURL, name, logger)
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case TransportStream:
		c := NewStreamClient(serverURL, name, logger)
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// Client is a WebSocket client for the domino server
type Client struct {
	serverURL string
	name      string
	conn      *websocket.Conn
	send      chan *protocol.Envelope
	messages  chan match.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL, name string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		name:      name,
		send:      make(chan *protocol.Envelope, 256),
		messages:  make(chan match.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL, "name", c.name)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	if c.name != "" {
		q := u.Query()
		q.Set("name", c.name)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Close closes the WebSocket connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connected = false
		c.logger.Debug("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Messages yields server messages in arrival order
func (c *Client) Messages() <-chan match.Message {
	return c.messages
}

// Play sends a structured move
func (c *Client) Play(ctx context.Context, m game.Move) error {
	env, err := protocol.MoveEnvelope(m)
	if err != nil {
		return err
	}
	return c.sendEnvelope(ctx, env)
}

// PlayText sends a move typed in either line grammar
func (c *Client) PlayText(ctx context.Context, text string) error {
	env, err := protocol.TextMoveEnvelope(text)
	if err != nil {
		return err
	}
	return c.sendEnvelope(ctx, env)
}

func (c *Client) sendEnvelope(ctx context.Context, env *protocol.Envelope) error {
	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		close(c.messages)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		_ = c.Close()
	}()

	for {
		var env protocol.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		msg, err := protocol.ToMessage(&env)
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

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}
