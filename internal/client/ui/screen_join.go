package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// updateJoin handles the name/password entry screen
func (m Model) updateJoin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "down", "up":
		m.focusPassword = !m.focusPassword
		return m, nil

	case "enter":
		if m.joinPending {
			return m, nil
		}
		if len(strings.TrimSpace(m.nameInput)) == 0 {
			m.errText = "Enter a name first"
			return m, nil
		}
		m.joinPending = true
		m.errText = ""
		if err := m.ws.SendJoin(strings.TrimSpace(m.nameInput), m.passwordInput); err != nil {
			m.joinPending = false
			m.errText = err.Error()
		}
		return m, nil

	case "backspace":
		if m.focusPassword {
			if len(m.passwordInput) > 0 {
				m.passwordInput = m.passwordInput[:len(m.passwordInput)-1]
			}
		} else if len(m.nameInput) > 0 {
			m.nameInput = m.nameInput[:len(m.nameInput)-1]
		}
		return m, nil

	default:
		if msg.Type == tea.KeyRunes || msg.String() == " " {
			text := msg.String()
			if m.focusPassword {
				if len(m.passwordInput) < 40 {
					m.passwordInput += text
				}
			} else if len(m.nameInput) < 20 {
				m.nameInput += text
			}
		}
		return m, nil
	}
}

// viewJoin renders the name/password entry screen
func (m Model) viewJoin() string {
	title := titleStyle.Render("COIN CHAOS")
	subtitle := subtitleStyle.Render("Grab more coins than everyone else")

	nameField := renderInput("Name", m.nameInput, !m.focusPassword, false)
	passwordField := renderInput("Password", m.passwordInput, m.focusPassword, true)

	var status string
	switch {
	case m.errText != "":
		status = errorStyle.Render(m.errText)
	case m.joinPending:
		status = mutedStyle.Render("Joining...")
	default:
		status = " "
	}

	mainContent := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		subtitle,
		"\n",
		nameField,
		passwordField,
		"\n",
		status,
	)

	instructions := instructionStyle.Render(
		"Press " + highlightStyle.Render("TAB") + " to switch fields  •  " +
			highlightStyle.Render("ENTER") + " to join  •  " +
			mutedStyle.Render("ESC to quit"))

	centeredMain := lipgloss.Place(m.width, m.height-5, lipgloss.Center, lipgloss.Center, mainContent)
	bottomInstructions := lipgloss.Place(m.width, 3, lipgloss.Center, lipgloss.Bottom, instructions)

	return centeredMain + "\n" + bottomInstructions
}

// renderInput renders one labeled input field with a cursor when focused
func renderInput(label, value string, focused, mask bool) string {
	text := value
	if mask {
		text = strings.Repeat("*", len(value))
	}
	if focused {
		text = highlightStyle.Render(text) + cursorStyle.Render("▊")
	} else if text == "" {
		text = mutedStyle.Render("...")
	}

	box := inputBoxStyle
	if focused {
		box = focusedInputBoxStyle
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		labelStyle.Render(label+":"),
		box.Render(text),
	)
}
