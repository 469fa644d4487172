// Package console is an interactive terminal front end over the retrieval
// service.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/viant/jokeqa/response"
	"github.com/viant/jokeqa/retrieval"
)

// QueryPort is the console-facing subset of the retrieval service.
type QueryPort interface {
	SubmitQuery(ctx context.Context, text string) (*retrieval.Result, error)
}

type answerMsg struct {
	query  string
	result *retrieval.Result
	err    error
}

// Model is the Bubble Tea model of the console.
type Model struct {
	service  QueryPort
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	result   *retrieval.Result
	cursor   int
	pending  bool
	ready    bool
}

// New creates a console model. timeout bounds each query.
func New(service QueryPort, summary string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question or name a topic, Enter to submit"
	ti.Focus()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Model{service: service, timeout: timeout, input: ti, viewport: viewport.New(0, 0), summary: summary, status: "Ready."}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, resize and answer messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case answerMsg:
		m.pending = false
		m.cursor = 0
		if msg.err != nil {
			_, env := response.Render(nil, msg.err)
			m.result = nil
			m.status = fmt.Sprintf("Error %d: %s", env.StatusCode, strings.Join(env.Message.Errors, "; "))
		} else {
			m.result = msg.result
			m.status = fmt.Sprintf("%s answer for %q", msg.result.Source, msg.query)
		}
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := m.input.Value()
			if m.pending || strings.TrimSpace(q) == "" {
				return m, nil
			}
			m.pending = true
			m.status = "Searching..."
			m.input.SetValue("")
			return m, m.ask(q)
		case "down":
			if n := m.candidates(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "up":
			if n := m.candidates(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(query string) tea.Cmd {
	service, timeout := m.service, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := service.SubmitQuery(ctx, query)
		return answerMsg{query: query, result: res, err: err}
	}
}

func (m Model) candidates() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Candidates)
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("jokeqa")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(answerStyle.Render(m.result.Text))
	b.WriteString("\n\n")
	if m.result.Source == retrieval.SourceFallback {
		fmt.Fprintf(&b, "fallback  topic=%s  nearest=%.3f\n", m.result.Topic, m.result.Distance)
	} else {
		fmt.Fprintf(&b, "direct  topic=%s  distance=%.3f\n", m.result.Topic, m.result.Distance)
	}
	if n := m.candidates(); n > 0 {
		c := m.result.Candidates[m.cursor]
		fmt.Fprintf(&b, "\nCandidate %d/%d  distance=%.3f  topic=%s\n%s", m.cursor+1, n, c.Distance, c.Topic, c.Text)
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Run starts the console on the terminal and blocks until the user quits.
func Run(service QueryPort, summary string, timeout time.Duration) error {
	_, err := tea.NewProgram(New(service, summary, timeout), tea.WithAltScreen()).Run()
	return err
}
