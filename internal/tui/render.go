package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
)

func leaderColumns(width int) []table.Column {
	topic := 24
	rest := width - topic - 4
	if rest < 20 {
		rest = 20
	}
	return []table.Column{
		{Title: "Thema", Width: topic},
		{Title: "Führende Partei(en)", Width: rest},
	}
}

func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252")).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.NoColor{}).Bold(false)
	return styles
}

func renderWelcome(noColor bool) string {
	title := stylize("Willkommen bei der Wahlspinne!", noColor, lipgloss.Color("33"))
	text := "Webe dir dein politisches Netz und vergleiche es mit den Bundestagsparteien.\n" +
		"Drücke Enter, um loszulegen."
	return lipgloss.JoinVertical(lipgloss.Left, title, "", text)
}

func renderQuestion(state domain.SessionState, choice int, noColor bool) string {
	prompt := ""
	if state.Question != nil {
		prompt = state.Question.Prompt
	}
	var scale strings.Builder
	for v := domain.MinAnswer; v <= domain.MaxAnswer; v++ {
		label := fmt.Sprintf(" %d ", v)
		if v == choice {
			label = highlight("["+strings.TrimSpace(label)+"]", noColor)
		}
		scale.WriteString(label)
	}
	progress := fmt.Sprintf("Frage %d von %d", state.QuestionIndex+1, state.Total)
	return lipgloss.JoinVertical(lipgloss.Left,
		stylize(prompt, noColor, lipgloss.Color("252")),
		"",
		scale.String(),
		"",
		stylize(progress, noColor, lipgloss.Color("242")),
	)
}

func renderFilters(state domain.SessionState, cursor int, noColor bool) string {
	lines := []string{stylize("Filter Parteien", noColor, lipgloss.Color("33"))}
	for i, e := range state.PartyFilter {
		lines = append(lines, filterLine(e, i == cursor, noColor))
	}
	lines = append(lines, stylize("Filter Themen", noColor, lipgloss.Color("33")))
	for i, e := range state.TopicFilter {
		lines = append(lines, filterLine(e, len(state.PartyFilter)+i == cursor, noColor))
	}
	return strings.Join(lines, "\n")
}

func filterLine(e domain.FilterEntry, selected, noColor bool) string {
	box := "[ ]"
	if e.Visible {
		box = "[x]"
	}
	line := "  " + box + " " + e.Key
	if selected {
		line = "> " + box + " " + e.Key
		return highlight(line, noColor)
	}
	return line
}

// renderChart prints the radar data as one line per visible topic.
func renderChart(session *app.Session, noColor bool) string {
	chart, err := session.Chart()
	if err != nil {
		return ""
	}
	if len(chart.Rows) == 0 {
		return stylize("Keine Themen ausgewählt", noColor, lipgloss.Color("242"))
	}
	lines := make([]string, 0, len(chart.Rows)+1)
	lines = append(lines, stylize("Dein Netz", noColor, lipgloss.Color("33")))
	for _, row := range chart.Rows {
		cells := []string{fmt.Sprintf("%-24s", row.Topic)}
		for _, s := range chart.Series {
			var v string
			if s.Key == domain.UserSeriesKey {
				v = fmt.Sprintf("%s %d", s.Name, row.User)
			} else if score, ok := row.Value(s.Key); ok {
				v = fmt.Sprintf("%s %g", s.Name, score)
			} else {
				continue
			}
			cells = append(cells, stylize(v, noColor, lipgloss.Color(s.Color)))
		}
		lines = append(lines, strings.Join(cells, "  "))
	}
	return strings.Join(lines, "\n")
}

func renderFooter(phase domain.Phase, notice string, opts Options) string {
	var help string
	switch phase {
	case domain.PhaseWelcome:
		help = "enter: starten • q: beenden"
	case domain.PhaseAnswering:
		help = "←/→: wählen • enter: bestätigen • 1-9, 0=10: direkt antworten • q: beenden"
	case domain.PhaseResult:
		help = "↑/↓: Filter wählen • leertaste: umschalten"
		if opts.Export != nil {
			help += " • e: exportieren"
		}
		if opts.Share != nil {
			help += " • s: teilen"
		}
		help += " • q: beenden"
	}
	footer := stylize(help, opts.NoColor, lipgloss.Color("244"))
	if notice == "" {
		return footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, stylize(notice, opts.NoColor, lipgloss.Color("214")), footer)
}

func highlight(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Render(text)
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
