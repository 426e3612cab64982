// Package tui is the terminal chat client: a transcript viewport plus a
// message input, talking to the chatbot server's /chat endpoint.
package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// chatRequest mirrors the server's QueryInput.
type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse mirrors the server's QueryResponse.
type chatResponse struct {
	Answer    string            `json:"answer"`
	SessionID string            `json:"session_id"`
	Status    domain.TurnStatus `json:"status"`
}

// replyMsg delivers a completed server round-trip to Update.
type replyMsg struct {
	response chatResponse
	err      error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	serverURL string
	sessionID string
	client    *http.Client

	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	status     string
	waiting    bool
	ready      bool
}

// New creates a chat client model for the given server URL and session.
func New(serverURL, sessionID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		serverURL: strings.TrimRight(serverURL, "/"),
		sessionID: sessionID,
		client:    &http.Client{Timeout: 60 * time.Second},
		input:     ti,
		viewport:  vp,
		status:    "Connected. Say hello!",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and server-reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header + input frame + status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(strings.Join(m.transcript, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.sessionID = msg.response.SessionID
		m.transcript = append(m.transcript, assistantStyle.Render("bot: ")+msg.response.Answer)
		switch msg.response.Status {
		case domain.StatusAwaitingConfirmation:
			m.status = "Please confirm with yes/no."
		case domain.StatusDone:
			m.status = "Interview complete. You can keep chatting."
		default:
			m.status = fmt.Sprintf("Session %s", m.sessionID)
		}
		m.viewport.SetContent(strings.Join(m.transcript, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.transcript = append(m.transcript, userStyle.Render("you: ")+text)
				m.viewport.SetContent(strings.Join(m.transcript, "\n"))
				m.viewport.GotoBottom()
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				return m, m.send(text)
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SCB Protect Chatbot")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// send posts the message to the server off the UI loop.
func (m Model) send(text string) tea.Cmd {
	serverURL, sessionID, client := m.serverURL, m.sessionID, m.client
	return func() tea.Msg {
		body, err := json.Marshal(chatRequest{Question: text, SessionID: sessionID})
		if err != nil {
			return replyMsg{err: err}
		}
		resp, err := client.Post(serverURL+"/chat", "application/json", bytes.NewReader(body))
		if err != nil {
			return replyMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return replyMsg{err: fmt.Errorf("server returned %s", resp.Status)}
		}
		var out chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return replyMsg{err: err}
		}
		return replyMsg{response: out}
	}
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
