package match

import "github.com/lox/dominoes/internal/game"

// Monitor receives match lifecycle callbacks. Implementations must be safe
// for concurrent use since several matches may run at once.
type Monitor interface {
	OnMatchStart(matchID string, seats int)
	OnMatchEnd(matchID string, err error)
	OnMoveAccepted(matchID string, update game.Update)
	OnMoveRejected(matchID string, seat int, err error)
	OnSendFailed(matchID string, seat int, err error)
}

// NopMonitor ignores every callback
type NopMonitor struct{}

func (NopMonitor) OnMatchStart(string, int) {}
func (NopMonitor) OnMatchEnd(string, error) {}
func (NopMonitor) OnMoveAccepted(string, game.Update) {}
func (NopMonitor) OnMoveRejected(string, int, error) {}
func (NopMonitor) OnSendFailed(string, int, error) {}

// MultiMonitor fans callbacks out to several monitors
type MultiMonitor struct {
	monitors []Monitor
}

// NewMultiMonitor creates a monitor that forwards to all non-nil monitors
func NewMultiMonitor(monitors ...Monitor) *MultiMonitor {
	m := &MultiMonitor{}
	for _, mon := range monitors {
		if mon != nil {
			m.monitors = append(m.monitors, mon)
		}
	}
	return m
}

func (m *MultiMonitor) OnMatchStart(matchID string, seats int) {
	for _, mon := range m.monitors {
		mon.OnMatchStart(matchID, seats)
	}
}

func (m *MultiMonitor) OnMatchEnd(matchID string, err error) {
	for _, mon := range m.monitors {
		mon.OnMatchEnd(matchID, err)
	}
}

func (m *MultiMonitor) OnMoveAccepted(matchID string, update game.Update) {
	for _, mon := range m.monitors {
		mon.OnMoveAccepted(matchID, update)
	}
}

func (m *MultiMonitor) OnMoveRejected(matchID string, seat int, err error) {
	for _, mon := range m.monitors {
		mon.OnMoveRejected(matchID, seat, err)
	}
}

func (m *MultiMonitor) OnSendFailed(matchID string, seat int, err error) {
	for _, mon := range m.monitors {
		mon.OnSendFailed(matchID, seat, err)
	}
}
