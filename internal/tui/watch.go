// Package tui provides the terminal user interface for watching a
// verification run live.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/checkpoint/internal/verify"
)

// maxLogLines bounds the activity log shown in the watch view.
const maxLogLines = 12

// EventMsg wraps an agent event for the watch view.
type EventMsg struct {
	Event verify.Event
}

// DoneMsg signals that the run has finished.
type DoneMsg struct {
	Outcome *verify.Outcome
}

// WatchModel displays a verification run as it progresses.
type WatchModel struct {
	taskTitle     string
	maxIterations int

	spinner   spinner.Model
	iteration int
	toolCalls int
	log       []string
	outcome   *verify.Outcome
	quitting  bool

	width int

	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	valueStyle  lipgloss.Style
	toolStyle   lipgloss.Style
	passStyle   lipgloss.Style
	failStyle   lipgloss.Style
	dimStyle    lipgloss.Style
}

// NewWatchModel creates a watch view for a run with the given iteration cap.
func NewWatchModel(taskTitle string, maxIterations int) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &WatchModel{
		taskTitle:     taskTitle,
		maxIterations: maxIterations,
		spinner:       s,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")).
			MarginBottom(1),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		toolStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),

		passStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),

		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// NewWatchProgram creates a tea.Program wrapping a watch model. The caller
// sends EventMsg and DoneMsg values into it from the agent's event handler.
func NewWatchProgram(taskTitle string, maxIterations int) *tea.Program {
	return tea.NewProgram(NewWatchModel(taskTitle, maxIterations))
}

// Init starts the spinner.
func (m *WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles input and run events.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case DoneMsg:
		m.outcome = msg.Outcome
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *WatchModel) applyEvent(event verify.Event) {
	switch event.Type {
	case verify.EventIteration:
		m.iteration = event.Iteration
		m.appendLog(fmt.Sprintf("iteration %d/%d", event.Iteration, m.maxIterations))
	case verify.EventToolUse:
		m.toolCalls++
		m.appendLog(m.toolStyle.Render(fmt.Sprintf("→ %s", event.Tool)))
	case verify.EventToolResult:
		m.appendLog(m.dimStyle.Render(fmt.Sprintf("  %s returned %d bytes", event.Tool, len(event.Content))))
	case verify.EventText:
		m.appendLog(m.dimStyle.Render(firstLine(event.Content)))
	case verify.EventError:
		m.appendLog(m.failStyle.Render("error: " + event.Content))
	}
}

func (m *WatchModel) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

// Outcome returns the final outcome once the run has finished.
func (m *WatchModel) Outcome() *verify.Outcome {
	return m.outcome
}

// View renders the watch display.
func (m *WatchModel) View() string {
	var b strings.Builder

	title := "Verification"
	if m.taskTitle != "" {
		title = "Verification: " + m.taskTitle
	}
	b.WriteString(m.headerStyle.Render(title))
	b.WriteString("\n")

	if m.outcome == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(" verifying")
		b.WriteString("\n\n")
	}

	b.WriteString(m.labelStyle.Render("Iteration:"))
	b.WriteString(m.valueStyle.Render(fmt.Sprintf("%d/%d", m.iteration, m.maxIterations)))
	b.WriteString("\n")
	b.WriteString(m.labelStyle.Render("Tool calls:"))
	b.WriteString(m.valueStyle.Render(fmt.Sprintf("%d", m.toolCalls)))
	b.WriteString("\n\n")

	for _, line := range m.log {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.outcome != nil && m.outcome.Result != nil {
		b.WriteString("\n")
		if m.outcome.Result.Passed {
			b.WriteString(m.passStyle.Render("PASSED"))
		} else {
			b.WriteString(m.failStyle.Render("FAILED"))
		}
		if m.outcome.Capped {
			b.WriteString(m.dimStyle.Render("  (iteration cap reached)"))
		}
		b.WriteString("\n")
		b.WriteString(m.outcome.Result.OverallFeedback)
		b.WriteString("\n")
	}

	if m.outcome == nil {
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("press q to abort display"))
		b.WriteString("\n")
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}
