// Package tui is the human-facing countdown client. It polls the daemon's
// status endpoint once per second and renders snapshots; it never computes
// or stores timer state itself.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timeboxai/timebox/internal/models"
)

// ViewMode represents the current view.
type ViewMode int

const (
	ViewModeMain    ViewMode = iota // countdown / idle dashboard
	ViewModeForm                    // start-session form
	ViewModeHistory                 // recent session history
)

// Messages
type tickMsg time.Time

type statusMsg struct {
	status models.TimerStatus
}

type sessionChangedMsg struct {
	session models.Session
}

type historyMsg struct {
	sessions []models.Session
}

type errMsg struct {
	err error
}

// Model is the root bubbletea model.
type Model struct {
	client *apiClient
	keys   KeyMap
	mode   ViewMode

	status  models.TimerStatus
	history []models.Session
	errText string

	labelInput   textinput.Model
	minutesInput textinput.Model
	focusIndex   int

	width  int
	height int
}

// New creates the root model pointed at the daemon.
func New(serverURL, apiKey string) Model {
	label := textinput.New()
	label.Placeholder = "what are you working on?"
	label.CharLimit = 64
	label.Width = 32

	minutes := textinput.New()
	minutes.Placeholder = "25"
	minutes.CharLimit = 4
	minutes.Width = 6

	return Model{
		client:       newAPIClient(serverURL, apiKey),
		keys:         DefaultKeyMap(),
		labelInput:   label,
		minutesInput: minutes,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.getStatus()
		if err != nil {
			return errMsg{err: err}
		}
		return statusMsg{status: status}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.client.getHistory()
		if err != nil {
			return errMsg{err: err}
		}
		return historyMsg{sessions: sessions}
	}
}

func (m Model) startSession(minutes int, label string) tea.Cmd {
	return func() tea.Msg {
		session, err := m.client.startTimer(minutes, label)
		if err != nil {
			return errMsg{err: err}
		}
		return sessionChangedMsg{session: session}
	}
}

func (m Model) stopSession() tea.Cmd {
	return func() tea.Msg {
		session, err := m.client.stopTimer()
		if err != nil {
			return errMsg{err: err}
		}
		return sessionChangedMsg{session: session}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), tickCmd())

	case statusMsg:
		m.status = msg.status
		return m, nil

	case sessionChangedMsg:
		m.errText = ""
		return m, m.fetchStatus()

	case historyMsg:
		m.history = msg.sessions
		return m, nil

	case errMsg:
		m.errText = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ViewModeForm {
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		if !m.status.IsRunning {
			m.mode = ViewModeForm
			m.errText = ""
			m.focusIndex = 0
			m.labelInput.SetValue("")
			m.minutesInput.SetValue("")
			return m, m.labelInput.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if m.status.IsRunning {
			return m, m.stopSession()
		}
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.mode = ViewModeHistory
		return m, m.fetchHistory()

	case key.Matches(msg, m.keys.Escape):
		m.mode = ViewModeMain
		return m, nil
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ViewModeMain
		m.labelInput.Blur()
		m.minutesInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.focusIndex = (m.focusIndex + 1) % 2
		if m.focusIndex == 0 {
			m.minutesInput.Blur()
			return m, m.labelInput.Focus()
		}
		m.labelInput.Blur()
		return m, m.minutesInput.Focus()

	case key.Matches(msg, m.keys.Enter):
		minutes, err := strconv.Atoi(strings.TrimSpace(m.minutesInput.Value()))
		if err != nil {
			m.errText = "minutes must be a number"
			return m, nil
		}
		m.mode = ViewModeMain
		m.labelInput.Blur()
		m.minutesInput.Blur()
		return m, m.startSession(minutes, m.labelInput.Value())
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.labelInput, cmd = m.labelInput.Update(msg)
	} else {
		m.minutesInput, cmd = m.minutesInput.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case ViewModeForm:
		body = m.viewForm()
	case ViewModeHistory:
		body = m.viewHistory()
	default:
		body = m.viewMain()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("timebox"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(errorStyle.Render("  " + m.errText))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) viewMain() string {
	if !m.status.IsRunning || m.status.Session == nil {
		return panelStyle.Render(
			countdownIdleStyle.Render("--:--") + "\n\n" +
				countdownIdleStyle.Render("no session running"),
		)
	}

	session := m.status.Session
	lines := []string{
		countdownStyle.Render(formatRemaining(m.status.RemainingSecs)),
		"",
		labelStyle.Render(session.Label),
		originStyle.Render("started by " + string(session.Origin)),
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) viewForm() string {
	return panelStyle.Render(
		labelStyle.Render("start a session") + "\n\n" +
			"label:   " + m.labelInput.View() + "\n" +
			"minutes: " + m.minutesInput.View(),
	)
}

func (m Model) viewHistory() string {
	if len(m.history) == 0 {
		return panelStyle.Render(countdownIdleStyle.Render("no sessions yet"))
	}

	var rows []string
	limit := len(m.history)
	if limit > 10 {
		limit = 10
	}
	for _, session := range m.history[:limit] {
		// Pad before styling so ANSI codes don't skew the column.
		padded := fmt.Sprintf("%-9s", session.Status)
		status := historyStoppedStyle.Render(padded)
		if session.Status == models.StatusCompleted {
			status = historyCompletedStyle.Render(padded)
		}
		rows = append(rows, fmt.Sprintf("%s  %s  %3dm  %s",
			session.StartedAt.Local().Format("Jan 02 15:04"),
			status,
			session.DurationSecs/60,
			session.Label,
		))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) helpLine() string {
	switch m.mode {
	case ViewModeForm:
		return "tab next field • enter start • esc cancel"
	case ViewModeHistory:
		return "esc back • q quit"
	default:
		if m.status.IsRunning {
			return "x stop • h history • q quit"
		}
		return "s start • h history • q quit"
	}
}

func formatRemaining(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	mins := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
