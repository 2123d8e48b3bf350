package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
)

// ActionFunc runs a long operation on the current chart (export, share) and
// returns a line to show to the user.
type ActionFunc func(ctx context.Context, chart domain.Chart) (string, error)

// Options configures the wizard.
type Options struct {
	NoColor bool
	// Export is bound to "e", Share to "s". Either may be nil.
	Export ActionFunc
	Share  ActionFunc
}

// Model is the terminal survey wizard. It owns no survey state itself; every
// key press is translated into a call on the session.
type Model struct {
	session *app.Session
	state   domain.SessionState
	choice  int
	cursor  int
	leaders table.Model
	notice  string
	busy    bool
	opts    Options
}

// NewModel builds a wizard for session.
func NewModel(session *app.Session, opts Options) Model {
	t := table.New(
		table.WithColumns(leaderColumns(60)),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	m := Model{
		session: session,
		state:   session.State(),
		leaders: t,
		opts:    opts,
	}
	m.resetChoice()
	m.refreshLeaders()
	return m
}

// actionDoneMsg reports the end of an asynchronous export or share.
type actionDoneMsg struct {
	label string
	text  string
	err   error
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.leaders.SetWidth(typed.Width)
		m.leaders.SetColumns(leaderColumns(typed.Width))
		return m, nil
	case actionDoneMsg:
		m.busy = false
		if typed.err != nil {
			m.notice = typed.label + " fehlgeschlagen: " + typed.err.Error()
		} else {
			m.notice = typed.text
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	}

	switch m.state.Phase {
	case domain.PhaseWelcome:
		if key == "enter" || key == " " {
			m.apply(m.session.Start())
		}
	case domain.PhaseAnswering:
		return m.handleAnswerKey(key), nil
	case domain.PhaseResult:
		return m.handleResultKey(key)
	}
	return m, nil
}

func (m Model) handleAnswerKey(key string) Model {
	switch key {
	case "left", "h", "-":
		if m.choice > domain.MinAnswer {
			m.choice--
		}
	case "right", "l", "+":
		if m.choice < domain.MaxAnswer {
			m.choice++
		}
	case "enter", " ":
		m.apply(m.session.SubmitAnswer(m.choice))
	default:
		if n, ok := digitAnswer(key); ok {
			m.choice = n
			m.apply(m.session.SubmitAnswer(n))
		}
	}
	return m
}

func (m Model) handleResultKey(key string) (Model, tea.Cmd) {
	entries := len(m.state.PartyFilter) + len(m.state.TopicFilter)
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < entries-1 {
			m.cursor++
		}
	case " ", "enter":
		if m.cursor < len(m.state.PartyFilter) {
			m.apply(m.session.ToggleParty(m.state.PartyFilter[m.cursor].Key))
		} else if i := m.cursor - len(m.state.PartyFilter); i < len(m.state.TopicFilter) {
			m.apply(m.session.ToggleTopic(m.state.TopicFilter[i].Key))
		}
	case "e":
		return m.runAction("Export", m.opts.Export)
	case "s":
		return m.runAction("Teilen", m.opts.Share)
	}
	return m, nil
}

func (m Model) runAction(label string, fn ActionFunc) (Model, tea.Cmd) {
	if fn == nil || m.busy {
		return m, nil
	}
	chart, err := m.session.Chart()
	if err != nil {
		m.notice = label + " fehlgeschlagen: " + err.Error()
		return m, nil
	}
	m.busy = true
	m.notice = label + " läuft..."
	return m, func() tea.Msg {
		text, err := fn(context.Background(), chart)
		return actionDoneMsg{label: label, text: text, err: err}
	}
}

// apply takes the outcome of a session call. Rejected input keeps the
// previous state and shows the error instead.
func (m *Model) apply(state domain.SessionState, err error) {
	if err != nil {
		m.notice = err.Error()
		return
	}
	moved := state.Phase != m.state.Phase || state.QuestionIndex != m.state.QuestionIndex
	m.state = state
	m.notice = ""
	if moved {
		m.resetChoice()
	}
	m.refreshLeaders()
}

func (m *Model) resetChoice() {
	m.choice = (domain.MinAnswer + domain.MaxAnswer) / 2
	if m.state.Phase == domain.PhaseAnswering && m.state.QuestionIndex < len(m.state.Answers) {
		if prev := m.state.Answers[m.state.QuestionIndex]; prev != 0 {
			m.choice = prev
		}
	}
}

func (m *Model) refreshLeaders() {
	if m.state.Phase != domain.PhaseResult {
		m.leaders.SetRows(nil)
		return
	}
	view, err := m.session.Result()
	if err != nil {
		return
	}
	rows := make([]table.Row, 0, len(view.Leaders))
	for _, lr := range view.Leaders {
		rows = append(rows, table.Row{lr.Topic, lr.Leaders})
	}
	m.leaders.SetRows(rows)
	m.leaders.SetHeight(max(len(rows)+1, 2))
}

// digitAnswer maps 1-9 to themselves and 0 to 10.
func digitAnswer(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	n, _ := strconv.Atoi(key)
	if n == 0 {
		n = 10
	}
	return n, true
}

func (m Model) View() string {
	var body string
	switch m.state.Phase {
	case domain.PhaseWelcome:
		body = renderWelcome(m.opts.NoColor)
	case domain.PhaseAnswering:
		body = renderQuestion(m.state, m.choice, m.opts.NoColor)
	case domain.PhaseResult:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderFilters(m.state, m.cursor, m.opts.NoColor),
			renderChart(m.session, m.opts.NoColor),
			stylize("Themen & führende Parteien", m.opts.NoColor, lipgloss.Color("33")),
			m.leaders.View(),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, renderFooter(m.state.Phase, m.notice, m.opts), "")
}
