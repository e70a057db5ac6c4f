package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/coin-chaos/internal/protocol"
)

// Conn is the connection surface the UI drives. *client.WSClient
// implements it.
type Conn interface {
	SendJoin(name, password string) error
	SendMove(dx, dy float64) error
	SendChat(text string) error
	SendStartGame(minutes int) error
	Receive() <-chan *protocol.Message
	Close() error
}

// ViewState represents the current view in the TUI
type ViewState int

const (
	ViewJoin ViewState = iota
	ViewGame
)

// Arena dimensions in world units, matching the server.
const (
	arenaWidth  = 800.0
	arenaHeight = 600.0
)

// moveStep is the displacement sent per keypress, in world units.
const moveStep = 16.0

// maxChatLines bounds the chat scrollback kept client-side.
const maxChatLines = 200

// Model is the main Bubble Tea model
type Model struct {
	viewState ViewState
	ws        Conn

	// Join screen
	nameInput     string
	passwordInput string
	focusPassword bool
	joinPending   bool
	errText       string

	// Session identity, set by join_ok
	playerID string
	role     string

	// Latest authoritative view of the session
	state protocol.StatePayload

	// Leaderboard overlay, set by game_over and cleared on the next
	// lobby state frame
	leaderboard []protocol.LeaderboardEntry

	// Chat
	chatLines       []string
	chatInput       string
	chatInputActive bool

	width  int
	height int
}

// NewModel creates a model attached to an open connection. Name and
// password may be pre-filled from flags.
func NewModel(ws Conn, name, password string) Model {
	return Model{
		viewState:     ViewJoin,
		ws:            ws,
		nameInput:     name,
		passwordInput: password,
		width:         80,
		height:        24,
	}
}

// Init starts listening for server messages
func (m Model) Init() tea.Cmd {
	return listenCmd(m.ws)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewState {
		case ViewJoin:
			return m.updateJoin(msg)
		case ViewGame:
			return m.updateGame(msg)
		}

	case serverMessageMsg:
		return m.handleServerMessage(msg.msg)

	case disconnectedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current view
func (m Model) View() string {
	switch m.viewState {
	case ViewJoin:
		return m.viewJoin()
	case ViewGame:
		return m.viewGame()
	}
	return ""
}

// handleServerMessage folds one server message into the model and keeps
// listening for the next one.
func (m Model) handleServerMessage(msg *protocol.Message) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case protocol.MsgJoinOK:
		var payload protocol.JoinOKPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		m.playerID = payload.PlayerID
		m.role = payload.Role
		m.errText = ""
		m.joinPending = false
		for _, line := range payload.History {
			m.appendChat(formatChatLine(line))
		}
		m.viewState = ViewGame

	case protocol.MsgJoinRejected:
		var payload protocol.JoinRejectedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		m.joinPending = false
		m.errText = rejectionText(payload.Reason)

	case protocol.MsgState:
		var payload protocol.StatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		// Frames are produced in order but a stale one costs nothing
		// to skip.
		if payload.Tick >= m.state.Tick {
			m.state = payload
		}
		if payload.Phase == protocol.PhaseLobby {
			m.leaderboard = nil
		}

	case protocol.MsgChat:
		var payload protocol.ChatBroadcastPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		m.appendChat(formatChatLine(payload))

	case protocol.MsgSystem:
		var payload protocol.SystemPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		m.appendChat(systemChatStyle.Render("* " + payload.Text))

	case protocol.MsgGameOver:
		var payload protocol.GameOverPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			break
		}
		m.leaderboard = payload.Leaderboard
	}

	return m, listenCmd(m.ws)
}

func (m *Model) appendChat(line string) {
	m.chatLines = append(m.chatLines, line)
	if len(m.chatLines) > maxChatLines {
		m.chatLines = m.chatLines[len(m.chatLines)-maxChatLines:]
	}
}

// localEcho appends the player's own chat line. The server relays chat
// to everyone except the sender, so the sender's panel is fed here.
func (m *Model) localEcho(text string) {
	sender := strings.TrimSpace(m.nameInput)
	color := ""
	for _, p := range m.state.Players {
		if p.ID == m.playerID {
			sender = p.Name
			color = p.Color
			break
		}
	}
	m.appendChat(formatChatLine(protocol.ChatBroadcastPayload{
		Sender:    sender,
		Color:     color,
		Text:      text,
		Timestamp: time.Now().Format("15:04"),
	}))
}

// isHost reports whether this client currently holds the host role.
func (m Model) isHost() bool {
	return m.playerID != "" && m.state.HostID == m.playerID
}

func formatChatLine(line protocol.ChatBroadcastPayload) string {
	sender := line.Sender
	if line.Color != "" {
		sender = lipglossColored(line.Color, sender)
	}
	return fmt.Sprintf("%s %s: %s", mutedStyle.Render(line.Timestamp), sender, line.Text)
}

func rejectionText(reason string) string {
	switch reason {
	case protocol.ReasonWrongPassword:
		return "Wrong password, try again"
	case protocol.ReasonNameConflict:
		return "That name is taken"
	case protocol.ReasonGameInProgress:
		return "A game is in progress, try again later"
	default:
		return "Join refused: " + reason
	}
}
