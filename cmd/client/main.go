package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/coin-chaos/internal/client"
	"github.com/yourusername/coin-chaos/internal/client/ui"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8765/ws", "WebSocket server URL")
	name := flag.String("name", "", "Player name (can also be typed on the join screen)")
	password := flag.String("password", "", "Lobby password (can also be typed on the join screen)")
	flag.Parse()

	ws, err := client.NewWSClient(*serverURL)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *serverURL, err)
	}

	p := tea.NewProgram(ui.NewModel(ws, *name, *password), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
