package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.viewport.View(), m.examplesView(), m.composerPanel()}
	if m.legendVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, m.statusBarView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	tagline := " "
	if m.entered {
		tagline = taglineStyle.Render(heroTagline)
	}
	text := lipgloss.JoinVertical(lipgloss.Left, heroTitleStyle.Render(heroTitle), tagline)
	return lipgloss.JoinHorizontal(lipgloss.Top, renderLogo(), heroSummaryStyle.Render(text))
}

func (m *model) examplesView() string {
	view := m.panel.View()
	heading := sectionHeaderStyle.Render("Try an example")
	if m.focus != focusExamples {
		heading += helperStyle.Render("  (Tab to choose)")
	}
	rows := []string{heading}
	for idx, question := range m.examples {
		label := trimmedQuestion(question, m.wrapWidth(4))
		switch {
		case !view.ExamplesEnabled:
			rows = append(rows, exampleDisabledStyle.Render("  "+label))
		case m.focus == focusExamples && idx == m.exampleCursor:
			rows = append(rows, currentLineStyle.Render("▸ "+label))
		default:
			rows = append(rows, exampleStyle.Render("  "+label))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *model) composerPanel() string {
	return strings.Join([]string{
		sectionHeaderStyle.Render("Ask a question"),
		m.composer.View(),
		helperStyle.Render(m.composerHelpText()),
	}, "\n")
}

func (m *model) composerHelpText() string {
	if m.focus == focusExamples {
		return "Enter: ask example • ↑/↓: choose • Tab: composer • ?: keys • Esc: clear"
	}
	return "Enter: generate insights • Tab: examples • Esc: clear • Ctrl+C: quit"
}

func (m *model) statusBarView() string {
	view := m.panel.View()
	stats := []string{
		fmt.Sprintf("State %s", view.State),
		fmt.Sprintf("Focus %s", m.focusLabel()),
	}
	if view.ShowSources {
		stats = append(stats, fmt.Sprintf("Sources %d", len(view.Sources)))
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) focusLabel() string {
	if m.focus == focusExamples {
		return "examples"
	}
	return "composer"
}

func (m *model) jobStatusBadges() []string {
	var badges []string
	for _, job := range m.jobs.Snapshots() {
		badges = append(badges, jobBadge(job))
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Enter", "Generate insights"},
		{"Tab", "Switch focus"},
		{"↑/↓", "Scroll or choose"},
		{"PgUp/PgDn", "Page results"},
		{"Esc", "Clear or quit"},
		{"?", "Toggle keys"},
		{"Ctrl+C", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

// renderLogo draws the wordmark with a one-cell drop shadow.
func renderLogo() string {
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	accentColor    = lipgloss.Color("#f2a541")
	inkColor       = lipgloss.Color("#fdf6e3")
	mutedInkColor  = lipgloss.Color("#b8b1a3")
	cardEdgeColor  = lipgloss.Color("#5c7c8a")
	hiddenInkColor = lipgloss.Color("#4a4a4a")

	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	answerStyle          = lipgloss.NewStyle().Foreground(inkColor)
	shimmerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	exampleStyle         = lipgloss.NewStyle().Foreground(mutedInkColor)
	exampleDisabledStyle = lipgloss.NewStyle().Foreground(hiddenInkColor).Faint(true)
	cardTitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	cardStyle            = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(cardEdgeColor).Padding(0, 1)
	cardHiddenStyle      = cardStyle.Copy().BorderForeground(hiddenInkColor).Foreground(hiddenInkColor).Faint(true)

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	heroSummaryStyle   = lipgloss.NewStyle().PaddingLeft(2)
	taglineStyle       = lipgloss.NewStyle().Foreground(mutedInkColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3a2a10"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"╻┏┓╻┏━┓╻┏━╸╻ ╻╺┳╸┏━┓┏━╸┏━┓╻ ╻╺┳╸",
		"┃┃┗┫┗━┓┃┃╺┓┣━┫ ┃ ┗━┓┃  ┃ ┃┃ ┃ ┃ ",
		"╹╹ ╹┗━┛╹┗━┛╹ ╹ ╹ ┗━┛┗━╸┗━┛┗━┛ ╹ ",
	}
)
