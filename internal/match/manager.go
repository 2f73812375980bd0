package match

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/randutil"
)

// Closer is implemented by sessions that hold a connection
type Closer interface {
	Close() error
}

// Manager keeps one open lobby at a time. When it fills, the roster is
// handed to a new Coordinator and a fresh lobby opens for the next arrivals.
type Manager struct {
	seats   int
	logger  *log.Logger
	monitor Monitor

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	lobby   *Lobby
	rotated chan struct{}

	matches sync.WaitGroup
	active  atomic.Int64
	started atomic.Uint64
}

// NewManager creates a manager for matches of the given size. rng seeds the
// deal of every match the manager starts.
func NewManager(seats int, rng *rand.Rand, logger *log.Logger, monitor Monitor) *Manager {
	if monitor == nil {
		monitor = NopMonitor{}
	}
	return &Manager{
		seats:   seats,
		logger:  logger.WithPrefix("manager"),
		monitor: monitor,
		rng:     rng,
		lobby:   NewLobby(seats, logger),
		rotated: make(chan struct{}),
	}
}

// Join places a session in the open lobby. If that lobby fills first the
// session waits for the next one.
func (m *Manager) Join(ctx context.Context, s Session) error {
	for {
		m.mu.Lock()
		lobby, rotated := m.lobby, m.rotated
		m.mu.Unlock()

		err := lobby.Join(s)
		if !errors.Is(err, ErrLobbyFull) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rotated:
		}
	}
}

// Run fills lobbies and starts matches until ctx is cancelled. It waits for
// running matches to return before it does.
func (m *Manager) Run(ctx context.Context) error {
	defer m.matches.Wait()

	for {
		m.mu.Lock()
		lobby := m.lobby
		m.mu.Unlock()

		roster, err := lobby.Run(ctx)
		if err != nil {
			return err
		}

		m.mu.Lock()
		m.lobby = NewLobby(m.seats, m.logger)
		close(m.rotated)
		m.rotated = make(chan struct{})
		m.mu.Unlock()

		if err := m.start(ctx, roster); err != nil {
			m.logger.Error("Failed to start match", "error", err)
			closeAll(roster)
		}
	}
}

func (m *Manager) start(ctx context.Context, roster []Session) error {
	m.rngMu.Lock()
	seed := m.rng.Int64()
	m.rngMu.Unlock()
	m.logger.Debug("Dealing match", "seed", seed)

	g, err := game.New(m.seats, randutil.New(seed))
	if err != nil {
		return err
	}

	id := uuid.NewString()
	coord, err := NewCoordinator(id, g, roster, m.logger, m.monitor)
	if err != nil {
		return err
	}

	m.started.Add(1)
	m.active.Add(1)
	m.matches.Add(1)
	go func() {
		defer m.matches.Done()
		defer m.active.Add(-1)

		err := coord.Run(ctx)
		if errors.Is(err, ErrSeatDisconnected) {
			m.logger.Warn("Match abandoned", "match", id, "error", err)
		}
		closeAll(roster)
	}()

	return nil
}

func closeAll(roster []Session) {
	for _, s := range roster {
		if c, ok := s.(Closer); ok {
			_ = c.Close() // Ignore close errors during teardown
		}
	}
}

// ActiveMatches returns the number of matches currently running
func (m *Manager) ActiveMatches() int {
	return int(m.active.Load())
}

// MatchesStarted returns the number of matches started since creation
func (m *Manager) MatchesStarted() uint64 {
	return m.started.Load()
}

// Seats returns the number of seats per match
func (m *Manager) Seats() int {
	return m.seats
}
