package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/reveal"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
	}
}

// Update sizes the results viewport to whatever the chrome leaves over.
func (l *pageLayout) Update(width, height, chrome int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	contentHeight := height - chrome
	if contentHeight < 6 {
		contentHeight = 6
	}
	l.viewportHeight = contentHeight
}

// cardSpan locates a rendered source card inside the results content.
type cardSpan struct {
	key    string
	start  int
	height int
}

type resultsView struct {
	content string
	cards   []cardSpan
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) buildResultsContent(view engine.ViewState) resultsView {
	cb := &contentBuilder{}
	switch view.Placeholder {
	case engine.PlaceholderEmpty:
		cb.WriteString(sectionHeaderStyle.Render(emptyStateTitle))
		cb.WriteRune('\n')
		cb.WriteString(helperStyle.Render(emptyStateHint))
		cb.WriteRune('\n')
		return resultsView{content: cb.String()}
	case engine.PlaceholderLoading:
		cb.WriteString(helperStyle.Render(fmt.Sprintf("%s Generating insights…", m.spinner.View())))
		cb.WriteRune('\n')
		cb.WriteRune('\n')
		for _, line := range shimmerLines(m.wrapWidth(0), m.shimmerPhase) {
			cb.WriteString(shimmerStyle.Render(line))
			cb.WriteRune('\n')
		}
		return resultsView{content: cb.String()}
	}

	cb.WriteString(sectionHeaderStyle.Render(answerHeading))
	cb.WriteRune('\n')
	body := wordwrap.String(view.Answer, m.wrapWidth(2))
	if view.State == engine.StateFailed {
		cb.WriteString(errorStyle.Render(body))
	} else {
		cb.WriteString(answerStyle.Render(body))
	}
	cb.WriteRune('\n')
	if !view.ShowSources {
		return resultsView{content: cb.String()}
	}

	cb.WriteRune('\n')
	cb.WriteString(sectionHeaderStyle.Render(sourcesHeading))
	cb.WriteRune('\n')
	cards := make([]cardSpan, 0, len(view.Sources))
	for idx, source := range view.Sources {
		key := cardKey(idx)
		card := m.renderSourceCard(source, m.cardRevealed(key))
		cards = append(cards, cardSpan{key: key, start: cb.Line(), height: lipgloss.Height(card)})
		cb.WriteString(card)
		cb.WriteRune('\n')
	}
	return resultsView{content: cb.String(), cards: cards}
}

func (m *model) renderSourceCard(source engine.Source, revealed bool) string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	text := strings.Join([]string{
		cardTitleStyle.Render(source.Title),
		wordwrap.String(source.Content, width-2),
	}, "\n")
	if revealed {
		return cardStyle.Width(width).Render(text)
	}
	return cardHiddenStyle.Width(width).Render(text)
}

func cardKey(idx int) string {
	return fmt.Sprintf("source-%d", idx+1)
}

func (s cardSpan) rect(width int) reveal.Rect {
	return reveal.Rect{X: 0, Y: s.start, Width: width, Height: s.height}
}

// shimmerLines draws placeholder bars whose lengths drift with phase.
func shimmerLines(width, phase int) []string {
	if width < 10 {
		width = 10
	}
	ratios := []int{92, 78, 85, 60}
	lines := make([]string, shimmerRows)
	for i := range lines {
		ratio := ratios[(i+phase)%len(ratios)]
		lines[i] = strings.Repeat("░", width*ratio/100)
	}
	return lines
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
