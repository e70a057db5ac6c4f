package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/coin-chaos/internal/protocol"
)

// updateGame handles the main game screen
func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle chat input if active
	if m.chatInputActive {
		switch msg.String() {
		case "esc":
			m.chatInputActive = false
			m.chatInput = ""
			return m, nil

		case "enter":
			if len(m.chatInput) > 0 {
				m.submitChatInput()
				m.chatInput = ""
			}
			return m, nil

		case "backspace":
			if len(m.chatInput) > 0 {
				m.chatInput = m.chatInput[:len(m.chatInput)-1]
			}
			return m, nil

		case " ":
			if len(m.chatInput) < 200 {
				m.chatInput += " "
			}
			return m, nil

		default:
			if msg.Type == tea.KeyRunes && len(m.chatInput) < 200 {
				for _, r := range msg.Runes {
					m.chatInput += string(r)
				}
			}
			return m, nil
		}
	}

	// Normal game controls
	switch msg.String() {
	case "ctrl+c", "q":
		m.ws.Close()
		return m, tea.Quit

	case "t", "T":
		m.chatInputActive = true
		m.chatInput = ""
		return m, nil

	// Movement keys - WASD and arrow keys
	case "up", "w", "W":
		m.ws.SendMove(0, -moveStep)
	case "down", "s", "S":
		m.ws.SendMove(0, moveStep)
	case "left", "a", "A":
		m.ws.SendMove(-moveStep, 0)
	case "right", "d", "D":
		m.ws.SendMove(moveStep, 0)
	}

	return m, nil
}

// submitChatInput sends the typed line. "/start N" is the host command
// to begin an N-minute game; everything else is chat.
func (m *Model) submitChatInput() {
	line := strings.TrimSpace(m.chatInput)
	if line == "" {
		return
	}

	if strings.HasPrefix(line, "/start") {
		arg := strings.TrimSpace(strings.TrimPrefix(line, "/start"))
		minutes, err := strconv.Atoi(arg)
		if err != nil {
			m.appendChat(errorStyle.Render("Usage: /start <minutes>"))
			return
		}
		m.ws.SendStartGame(minutes)
		return
	}

	// The server relays to everyone but us; echo our own line.
	if err := m.ws.SendChat(line); err == nil {
		m.localEcho(line)
	}
}

// viewGame renders the split arena/chat view
func (m Model) viewGame() string {
	arenaBoxWidth := int(float64(m.width) * 0.7)
	chatWidth := m.width - arenaBoxWidth - 6
	if chatWidth < 20 {
		chatWidth = 20
	}
	contentHeight := m.height - 6
	if contentHeight < 10 {
		contentHeight = 10
	}

	arenaContent := m.renderArena(arenaBoxWidth-4, contentHeight-2)
	arenaBox := arenaBoxStyle.
		Width(arenaBoxWidth).
		Height(contentHeight).
		Render(arenaContent)

	chatPanelHeight := contentHeight - 3
	chatBox := chatBoxStyle.
		Width(chatWidth).
		Height(chatPanelHeight).
		Render(m.renderChatPanel(chatWidth-2, chatPanelHeight-1))
	chatSection := lipgloss.JoinVertical(
		lipgloss.Left,
		chatBox,
		m.renderChatInputBox(chatWidth),
	)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, arenaBox, chatSection)

	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	view := lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)

	if m.state.Phase == protocol.PhaseLeaderboard && len(m.leaderboard) > 0 {
		overlay := m.renderLeaderboard()
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}

	return view
}

// renderHeader renders the phase line above the arena
func (m Model) renderHeader() string {
	var phaseText string
	switch m.state.Phase {
	case protocol.PhaseLobby:
		if m.isHost() {
			phaseText = highlightStyle.Render("LOBBY") + mutedStyle.Render("  you are the host, type /start <minutes> in chat")
		} else {
			phaseText = highlightStyle.Render("LOBBY") + mutedStyle.Render("  waiting for the host to start")
		}
	case protocol.PhaseCountdown:
		phaseText = highlightStyle.Render("GET READY...")
	case protocol.PhasePlaying:
		phaseText = highlightStyle.Render("PLAYING") + "  " +
			coinStyle.Render(fmt.Sprintf("%d:%02d left", m.state.RemainingTime/60, m.state.RemainingTime%60))
	case protocol.PhaseLeaderboard:
		phaseText = highlightStyle.Render("GAME OVER")
	default:
		phaseText = mutedStyle.Render("...")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Render(phaseText)
}

// renderArena renders the play field scaled to the viewport. Players
// are drawn as colored initials, coins as gold markers.
func (m Model) renderArena(width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}

	grid := make([][]string, height)
	for y := range grid {
		grid[y] = make([]string, width)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for _, coin := range m.state.Coins {
		x, y := scaleToGrid(coin.X, coin.Y, width, height)
		grid[y][x] = coinStyle.Render("●")
	}

	// Players draw over coins; self draws last.
	for _, p := range m.state.Players {
		if p.ID == m.playerID {
			continue
		}
		m.drawPlayer(grid, p, width, height, false)
	}
	for _, p := range m.state.Players {
		if p.ID == m.playerID {
			m.drawPlayer(grid, p, width, height, true)
		}
	}

	rows := make([]string, height)
	for y := range grid {
		rows[y] = strings.Join(grid[y], "")
	}
	return strings.Join(rows, "\n")
}

// drawPlayer puts a player marker and name label on the grid
func (m Model) drawPlayer(grid [][]string, p protocol.PlayerSnapshot, width, height int, self bool) {
	x, y := scaleToGrid(p.X, p.Y, width, height)

	marker := "☻"
	if self {
		marker = "☺"
	}
	grid[y][x] = lipglossColored(p.Color, marker)

	// Name label to the right of the marker, truncated to 5 chars.
	label := p.Name
	if len(label) > 5 {
		label = label[:5]
	}
	for i, ch := range label {
		lx := x + 1 + i
		if lx >= width {
			break
		}
		grid[y][lx] = mutedStyle.Render(string(ch))
	}
}

// scaleToGrid maps world coordinates to a viewport cell
func scaleToGrid(wx, wy float64, width, height int) (int, int) {
	x := int(wx / arenaWidth * float64(width))
	y := int(wy / arenaHeight * float64(height))
	if x < 0 {
		x = 0
	}
	if x >= width {
		x = width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= height {
		y = height - 1
	}
	return x, y
}

// renderChatPanel renders the chat scrollback
func (m Model) renderChatPanel(width, height int) string {
	chatTitle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render("CHAT")

	displayCount := height - 2
	if displayCount < 1 {
		displayCount = 1
	}

	startIdx := 0
	if len(m.chatLines) > displayCount {
		startIdx = len(m.chatLines) - displayCount
	}

	lines := m.chatLines[startIdx:]
	if len(lines) == 0 {
		lines = []string{mutedStyle.Render("No messages yet. Press 't' to type.")}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		chatTitle,
		strings.Join(lines, "\n"),
	)
}

// renderChatInputBox renders the chat input line below the panel
func (m Model) renderChatInputBox(width int) string {
	inputText := m.chatInput
	if m.chatInputActive {
		inputText += cursorStyle.Render("|")
	} else if inputText == "" {
		inputText = mutedStyle.Render("Press 't' to type...")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Render("> " + inputText)
}

// renderStatusBar renders the bottom status bar with this player's score
func (m Model) renderStatusBar() string {
	var self *protocol.PlayerSnapshot
	for i := range m.state.Players {
		if m.state.Players[i].ID == m.playerID {
			self = &m.state.Players[i]
			break
		}
	}

	info := ""
	if self != nil {
		info = lipglossColored(self.Color, self.Name) + "  " +
			coinStyle.Render(fmt.Sprintf("● %d", self.Score))
	}

	var controls string
	if m.chatInputActive {
		controls = mutedStyle.Render("ENTER: Send  •  ESC: Cancel")
	} else {
		controls = mutedStyle.Render("WASD/Arrows: Move  •  T: Chat  •  Q: Quit")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Render(info + "  •  " + controls)
}

// renderLeaderboard renders the final ranking overlay
func (m Model) renderLeaderboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FINAL SCORES"))
	b.WriteString("\n\n")
	for i, entry := range m.leaderboard {
		line := fmt.Sprintf("%d. %-12s %4d", i+1, entry.Name, entry.Score)
		if i == 0 {
			line = coinStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Returning to the lobby shortly..."))

	return leaderboardStyle.Render(b.String())
}
