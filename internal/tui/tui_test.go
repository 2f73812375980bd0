package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakePlayer struct {
	messages chan match.Message
	played   []game.Move
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{messages: make(chan match.Message, 8)}
}

func (p *fakePlayer) Messages() <-chan match.Message { return p.messages }

func (p *fakePlayer) Play(_ context.Context, m game.Move) error {
	p.played = append(p.played, m)
	return nil
}

func (p *fakePlayer) PlayText(context.Context, string) error { return nil }
func (p *fakePlayer) Close() error                           { return nil }

func newModel(t *testing.T) (*Model, *fakePlayer) {
	t.Helper()
	p := newFakePlayer()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	m := New(context.Background(), p, "alice", logger)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, p
}

func typeLine(m *Model, line string) tea.Cmd {
	return m.submit(line)
}

func lastLog(m *Model) string {
	entries := m.Log()
	if len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1]
}

func TestModelFollowsMatch(t *testing.T) {
	m, p := newModel(t)
	assert.Contains(t, m.View(), "Waiting for players")

	m.Update(serverMsg{msg: match.Init{Seat: 2, Hand: []domino.Domino{domino.New(4, 4), domino.New(1, 6)}}})
	m.Update(serverMsg{msg: match.Update{Update: game.Update{Side: game.Left, Seat: 0, Domino: domino.New(6, 3)}}})

	view := m.View()
	assert.Contains(t, view, "Seat: 2")
	assert.Contains(t, view, "Board: 6:3")
	assert.Contains(t, view, "0)4:4")
	assert.Contains(t, strings.Join(m.Log(), "\n"), "Seat 0 played 6:3 on the left")

	// Moving out of turn is refused locally
	assert.Nil(t, typeLine(m, "left 1"))
	assert.Equal(t, "Not your turn", lastLog(m))

	m.Update(serverMsg{msg: match.YourTurn{}})
	assert.Contains(t, m.View(), "Your turn")

	assert.Nil(t, typeLine(m, "right 0"))
	assert.Equal(t, "right 0 is not a legal move", lastLog(m))

	assert.Nil(t, typeLine(m, "sideways"))
	assert.Empty(t, p.played)

	cmd := typeLine(m, "left 1")
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, playedMsg{move: game.Move{Side: game.Left, Seat: 2, Position: 1}}, msg)
	assert.Equal(t, []game.Move{{Side: game.Left, Seat: 2, Position: 1}}, p.played)
	assert.False(t, m.Table().MyTurn)

	// The next update confirms the move
	m.Update(serverMsg{msg: match.Update{Update: game.Update{Side: game.Right, Seat: 0, Domino: domino.New(3, 4)}}})
	assert.Equal(t, "1:6 6:3 3:4", m.Table().Board.String())
	assert.Equal(t, []domino.Domino{domino.New(4, 4)}, m.Table().Hand)
}

func TestModelListsLegalMoves(t *testing.T) {
	m, _ := newModel(t)
	m.Update(serverMsg{msg: match.Init{Seat: 0, Hand: []domino.Domino{domino.New(2, 5)}}})

	assert.Nil(t, typeLine(m, "moves"))
	assert.Equal(t, "Legal moves: left 0 (2:5)", lastLog(m))
}

func TestModelDisconnect(t *testing.T) {
	m, p := newModel(t)
	close(p.messages)

	msg := m.listen()()
	assert.Equal(t, disconnectedMsg{}, msg)

	m.Update(msg)
	assert.Contains(t, m.View(), "Disconnected")
	assert.Nil(t, typeLine(m, "left 0"))
	assert.Equal(t, "Not connected", lastLog(m))
}

func TestModelQuit(t *testing.T) {
	m, _ := newModel(t)
	cmd := typeLine(m, "quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	m, _ := newModel(t)
	m.moveInput.SetValue("moves")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.moveInput.Value())
	assert.Equal(t, "No legal moves", lastLog(m))
}
