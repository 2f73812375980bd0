package server

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dominoes/internal/match"
	"github.com/lox/dominoes/internal/protocol"
)

// Option configures a Server
type Option func(*Server)

// WithAddress sets the HTTP listen address
func WithAddress(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLineAddress sets the TCP listen address for terminal clients
func WithLineAddress(addr string) Option {
	return func(s *Server) { s.lineAddr = addr }
}

// WithSeats sets how many players sit at each match
func WithSeats(seats int) Option {
	return func(s *Server) { s.seats = seats }
}

// WithSendBuffer sets the per player outbound queue capacity
func WithSendBuffer(n int) Option {
	return func(s *Server) { s.sendBuffer = n }
}

// WithSendTimeout sets how long a full outbound queue may hold up a send
func WithSendTimeout(d time.Duration) Option {
	return func(s *Server) { s.sendTimeout = d }
}

// WithClock replaces the clock used for send timeouts
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithMonitor adds a match monitor alongside the Prometheus one
func WithMonitor(m match.Monitor) Option {
	return func(s *Server) { s.monitors = append(s.monitors, m) }
}

// Server accepts players over HTTP (WebSocket and Connect streams) and raw
// TCP, and feeds them to the match manager.
type Server struct {
	addr        string
	lineAddr    string
	seats       int
	sendBuffer  int
	sendTimeout time.Duration
	clock       quartz.Clock
	monitors    []match.Monitor

	logger   *log.Logger
	upgrader websocket.Upgrader
	metrics  *PromMonitor
	manager  *match.Manager

	mu    sync.Mutex
	conns map[string]playerConn
}

// NewServer creates a server. rng seeds every deal.
func NewServer(logger *log.Logger, rng *rand.Rand, opts ...Option) *Server {
	s := &Server{
		addr:        DefaultAddress,
		lineAddr:    DefaultLineAddress,
		seats:       DefaultSeats,
		sendBuffer:  DefaultSendBuffer,
		sendTimeout: DefaultSendTimeout,
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		metrics: NewPromMonitor(),
		conns:   make(map[string]playerConn),
	}
	for _, opt := range opts {
		opt(s)
	}

	monitor := match.NewMultiMonitor(append([]match.Monitor{s.metrics}, s.monitors...)...)
	s.manager = match.NewManager(s.seats, rng, logger, monitor)
	return s
}

// Handler returns the HTTP handler. It speaks HTTP/2 without TLS so
// Connect bidirectional streams work on a plain listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.Handle(s.streamHandler())

	return h2c.NewHandler(mux, &http2.Server{})
}

// Run listens on the configured addresses and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	lineLn, err := net.Listen("tcp", s.lineAddr)
	if err != nil {
		_ = httpLn.Close()
		return fmt.Errorf("listen on %s: %w", s.lineAddr, err)
	}
	return s.Serve(ctx, httpLn, lineLn)
}

// Serve serves HTTP and line clients on the given listeners and runs matches
// until ctx is cancelled
func (s *Server) Serve(ctx context.Context, httpLn, lineLn net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.manager.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", "addr", httpLn.Addr().String(), "seats", s.seats)
		if err := httpSrv.Serve(httpLn); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return s.ServeLine(ctx, lineLn)
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")
		s.closeAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ServeLine accepts terminal clients on ln until ctx is cancelled
func (s *Server) ServeLine(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting line server", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		sess := NewLineSession(conn, NewOutbox[string](s.sendBuffer, s.sendTimeout, s.clock), s.logger)
		sess.Start()
		s.admit(sess)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sess := NewWSSession(conn, r.URL.Query().Get("name"),
		NewOutbox[*protocol.Envelope](s.sendBuffer, s.sendTimeout, s.clock), s.logger)
	sess.Start()
	s.admit(sess)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleStats reports a plain text summary
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Connected players: %d\n", s.Connections())
	_, _ = fmt.Fprintf(w, "Seats per match: %d\n", s.seats)
	_, _ = fmt.Fprintf(w, "Active matches: %d\n", s.manager.ActiveMatches())
	_, _ = fmt.Fprintf(w, "Matches started: %d\n", s.manager.MatchesStarted())
}

// admit tracks a new connection and queues it for a seat
func (s *Server) admit(c playerConn) {
	s.mu.Lock()
	s.conns[c.ID()] = c
	total := len(s.conns)
	s.mu.Unlock()

	s.metrics.ConnectionOpened(c.Transport())
	s.logger.Info("Player connected", "conn", c.ID(), "transport", c.Transport(), "name", c.Name(), "total", total)

	go func() {
		if err := s.manager.Join(c.Context(), c); err != nil {
			s.logger.Debug("Player left before being seated", "conn", c.ID(), "error", err)
			_ = c.Close()
		}
	}()

	go func() {
		<-c.Done()
		s.mu.Lock()
		delete(s.conns, c.ID())
		total := len(s.conns)
		s.mu.Unlock()

		s.metrics.ConnectionClosed(c.Transport())
		s.logger.Info("Player disconnected", "conn", c.ID(), "seat", c.Seat(), "total", total)
	}()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]playerConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

// Connections returns the number of connected players
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Manager returns the match manager
func (s *Server) Manager() *match.Manager {
	return s.manager
}

// Metrics returns the Prometheus monitor
func (s *Server) Metrics() *PromMonitor {
	return s.metrics
}
