package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/coin-chaos/internal/protocol"
)

// serverMessageMsg wraps one message received from the server
type serverMessageMsg struct {
	msg *protocol.Message
}

// disconnectedMsg is sent when the server connection drops
type disconnectedMsg struct{}

// listenCmd waits for the next server message
func listenCmd(ws Conn) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ws.Receive()
		if !ok {
			return disconnectedMsg{}
		}
		return serverMessageMsg{msg: msg}
	}
}
