package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var serverURL, sessionID string
	flag.StringVar(&serverURL, "server", "http://127.0.0.1:8000", "Chatbot server base URL")
	flag.StringVar(&sessionID, "session", "", "Resume an existing session id (default: new session)")
	flag.Parse()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	m := tui.New(serverURL, sessionID)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat client error: %v\n", err)
		os.Exit(1)
	}
}
