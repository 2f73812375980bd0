// Package tui is a Bubble Tea terminal client for playing dominoes.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/dominoes/internal/client"
	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

const inputPlaceholder = "left|right <position>, 'moves' to list legal moves, 'quit' to exit"

// serverMsg carries a message read from the connection
type serverMsg struct {
	msg match.Message
}

// disconnectedMsg signals that the server closed the connection
type disconnectedMsg struct{}

// playedMsg reports the outcome of sending a move
type playedMsg struct {
	move game.Move
	err  error
}

// Model is the Bubble Tea model for a seat at a domino match
type Model struct {
	ctx    context.Context
	player client.Player
	name   string
	table  *client.Table
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	moveInput   textinput.Model

	// State
	gameLog      []string
	focusedPane  int // 0 = log, 1 = input
	quitting     bool
	disconnected bool

	// Dimensions
	width       int
	height      int
	initialized bool
}

// New creates a model reading from and playing through player
func New(ctx context.Context, player client.Player, name string, logger *log.Logger) *Model {
	// Sized properly once WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		player:      player,
		name:        name,
		table:       client.NewTable(),
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		moveInput:   ti,
		focusedPane: 1,
	}
}

// Run starts the program full screen and blocks until the user quits
func Run(ctx context.Context, player client.Player, name string, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, player, name, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next server message
func (m *Model) listen() tea.Cmd {
	messages := m.player.Messages()
	return func() tea.Msg {
		msg, ok := <-messages
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case serverMsg:
		m.table.Apply(msg.msg)
		m.describe(msg.msg)
		cmds = append(cmds, m.listen())

	case disconnectedMsg:
		m.disconnected = true
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server"))

	case playedMsg:
		if msg.err != nil {
			m.logger.Error("Failed to send move", "error", msg.err)
			m.AddLogEntry(ErrorStyle.Render("Failed to send move: " + msg.err.Error()))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.moveInput.Focus()
			} else {
				m.focusedPane = 0
				m.moveInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.moveInput.Value())
				m.moveInput.SetValue("")
				if cmd := m.submit(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.moveInput, cmd = m.moveInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles a line typed by the user
func (m *Model) submit(input string) tea.Cmd {
	switch strings.ToLower(input) {
	case "":
		return nil
	case "quit", "exit":
		m.quitting = true
		return tea.Quit
	case "moves", "hint":
		m.AddLogEntry(m.renderLegalMoves())
		return nil
	}

	if m.disconnected {
		m.AddLogEntry(ErrorStyle.Render("Not connected"))
		return nil
	}
	if !m.table.Started {
		m.AddLogEntry(WarningStyle.Render("Waiting for the match to start"))
		return nil
	}
	if !m.table.MyTurn {
		m.AddLogEntry(WarningStyle.Render("Not your turn"))
		return nil
	}

	move, err := game.ParseLine(input, m.table.Seat)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	// The server ignores illegal moves without a reply
	if !slices.Contains(m.table.LegalMoves(), move) {
		m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("%s %d is not a legal move", move.Side, move.Position)))
		return nil
	}

	tile := m.table.Hand[move.Position]
	m.table.Played(move)
	m.AddLogEntry(fmt.Sprintf("You played %s on the %s", tile, move.Side))

	ctx, player := m.ctx, m.player
	return func() tea.Msg {
		return playedMsg{move: move, err: player.Play(ctx, move)}
	}
}

// describe writes a log line for a server message
func (m *Model) describe(msg match.Message) {
	switch msg := msg.(type) {
	case match.Init:
		m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf(" Match started, you are seat %d ", msg.Seat)))
		m.AddLogEntry("Hand: " + domino.FormatAll(msg.Hand))
	case match.YourTurn:
		m.AddLogEntry(HandInfoStyle.Render("Your turn"))
		if len(m.table.LegalMoves()) == 0 {
			m.AddLogEntry(WarningStyle.Render("No tile fits, waiting"))
		}
	case match.Update:
		m.AddLogEntry(fmt.Sprintf("Seat %d played %s on the %s", msg.Seat, msg.Domino, msg.Side))
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(1)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(0)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

// renderSidebarPane shows the seat and the board ends
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(" " + m.name + " "))
	content.WriteString("\n\n")

	if !m.table.Started {
		content.WriteString(InfoStyle.Render("Waiting for players..."))
		return content.String()
	}

	content.WriteString(fmt.Sprintf("Seat: %d\n", m.table.Seat))
	content.WriteString(fmt.Sprintf("Tiles in hand: %d\n", len(m.table.Hand)))
	content.WriteString(fmt.Sprintf("Tiles on board: %d\n", m.table.Board.Len()))
	if !m.table.Board.IsEmpty() {
		content.WriteString(BoardStyle.Render(fmt.Sprintf("Ends: %d | %d", m.table.Board.Left(), m.table.Board.Right())))
		content.WriteString("\n")
	}
	return content.String()
}

// renderActionPane shows the board, the hand and the input
func (m *Model) renderActionPane() string {
	var content strings.Builder

	if m.table.Started {
		board := m.table.Board.String()
		if board == "" {
			board = "(empty)"
		}
		content.WriteString(BoardStyle.Render("Board: " + board))
		content.WriteString("\n")
		content.WriteString(m.renderHand())
		content.WriteString("\n")
	}

	switch {
	case m.disconnected:
		content.WriteString(ErrorStyle.Render("Disconnected"))
	case m.table.MyTurn:
		content.WriteString(HandInfoStyle.Render("Your turn"))
	default:
		content.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	content.WriteString("\n")

	content.WriteString(m.moveInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

// renderHand lists held tiles by position, highlighting those that fit
func (m *Model) renderHand() string {
	playable := make(map[int]bool)
	for _, mv := range m.table.LegalMoves() {
		playable[mv.Position] = true
	}

	parts := make([]string, len(m.table.Hand))
	for i, tile := range m.table.Hand {
		label := strconv.Itoa(i) + ")" + tile.String()
		if m.table.MyTurn && playable[i] {
			parts[i] = PlayableTileStyle.Render(label)
		} else {
			parts[i] = DeadTileStyle.Render(label)
		}
	}
	return "Hand: " + strings.Join(parts, " ")
}

// renderLegalMoves lists the moves the hand allows right now
func (m *Model) renderLegalMoves() string {
	moves := m.table.LegalMoves()
	if !m.table.Started || len(moves) == 0 {
		return InfoStyle.Render("No legal moves")
	}

	parts := make([]string, len(moves))
	for i, mv := range moves {
		parts[i] = fmt.Sprintf("%s %d (%s)", mv.Side, mv.Position, m.table.Hand[mv.Position])
	}
	return "Legal moves: " + strings.Join(parts, ", ")
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log
func (m *Model) Log() []string {
	return slices.Clone(m.gameLog)
}

// Table returns the model's view of the match
func (m *Model) Table() *client.Table {
	return m.table
}
