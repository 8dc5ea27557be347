package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/reveal"
)

// defaultRevealMargin is in terminal lines.
const defaultRevealMargin = 1

// Config wires runtime options into the TUI program.
type Config struct {
	Panel  *engine.Panel
	Logger *zap.Logger
	// Reveal falls back to a one-line margin when nil. Zero values are kept.
	Reveal        *reveal.Options
	EntranceDelay time.Duration
}

func (c Config) revealOptions() reveal.Options {
	if c.Reveal == nil {
		return reveal.Options{Threshold: reveal.DefaultThreshold, Margin: defaultRevealMargin}
	}
	return *c.Reveal
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Panel == nil {
		config.Panel = engine.NewPanel(nil)
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.CharLimit = 500
	composer.Width = 70
	composer.SetValue(config.Panel.Query())
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	m := &model{
		config:        config,
		panel:         config.Panel,
		logger:        config.Logger,
		jobs:          newJobBus(config.Logger),
		layout:        newPageLayout(),
		focus:         focusComposer,
		composer:      composer,
		spinner:       spin,
		viewport:      vp,
		examples:      config.Panel.Examples(),
		viewportDirty: true,
	}
	return m
}

type model struct {
	config Config
	panel  *engine.Panel
	logger *zap.Logger
	jobs   *jobBus
	layout pageLayout

	focus    focusArea
	composer textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	examples      []string
	exampleCursor int
	legendVisible bool
	entered       bool
	shimmerPhase  int

	viewportDirty bool
	revealer      *reveal.Controller
	cards         reveal.Deck
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, entranceCmd(m.config.EntranceDelay))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.panel.State() != engine.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.shimmerPhase++
		m.markViewportDirty()
		return m, cmd
	case entranceMsg:
		m.entered = true
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.windowWidth = msg.Width
		m.layout.windowHeight = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.refreshViewportIfDirty()
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.checkReveal()
		return m, cmd
	case jobSignalMsg:
		m.jobs.Record(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.jobs.Record(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case submissionResultMsg:
		m.panel.Finish(msg.outcome)
		m.resetReveal()
		m.viewport.GotoTop()
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.composer.Value() != "" {
			m.composer.SetValue("")
			m.panel.SetQuery("")
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab:
		return m, m.toggleFocus()
	case tea.KeyPgDown:
		m.scroll(func() { m.viewport.ViewDown() })
		return m, nil
	case tea.KeyPgUp:
		m.scroll(func() { m.viewport.ViewUp() })
		return m, nil
	}
	if m.focus == focusExamples {
		return m.handleExamplesKey(key)
	}
	return m.handleComposerKey(key)
}

func (m *model) handleComposerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		return m, m.submitComposer()
	case tea.KeyUp:
		m.scroll(func() { m.viewport.LineUp(1) })
		return m, nil
	case tea.KeyDown:
		m.scroll(func() { m.viewport.LineDown(1) })
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	m.panel.SetQuery(m.composer.Value())
	return m, cmd
}

func (m *model) handleExamplesKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		return m, m.selectExample()
	case "up", "k":
		if m.exampleCursor > 0 {
			m.exampleCursor--
		}
	case "down", "j":
		if m.exampleCursor < len(m.examples)-1 {
			m.exampleCursor++
		}
	case "?":
		m.legendVisible = !m.legendVisible
		m.resize()
	}
	return m, nil
}

func (m *model) toggleFocus() tea.Cmd {
	if m.focus == focusComposer {
		m.focus = focusExamples
		m.composer.Blur()
		return nil
	}
	m.focus = focusComposer
	return m.composer.Focus()
}

func (m *model) submitComposer() tea.Cmd {
	if !m.panel.View().SubmitEnabled {
		return nil
	}
	sub, ok := m.panel.Begin("")
	if !ok {
		return nil
	}
	return m.startSubmission(sub)
}

func (m *model) selectExample() tea.Cmd {
	if !m.panel.View().ExamplesEnabled || len(m.examples) == 0 {
		return nil
	}
	question := m.examples[m.exampleCursor]
	sub, ok := m.panel.BeginExample(question)
	if !ok {
		return nil
	}
	m.composer.SetValue(question)
	m.composer.CursorEnd()
	return m.startSubmission(sub)
}

func (m *model) startSubmission(sub engine.Submission) tea.Cmd {
	m.logger.Debug("submission queued", zap.String("id", sub.ID))
	m.resetReveal()
	m.shimmerPhase = 0
	m.viewport.GotoTop()
	m.markViewportDirty()
	return tea.Batch(
		m.jobs.Start(jobKindGenerate, submissionJob(m.panel, sub)),
		m.spinner.Tick,
	)
}

func (m *model) scroll(move func()) {
	m.refreshViewportIfDirty()
	move()
	m.checkReveal()
}

// resize recomputes the viewport from the rendered height of everything
// around it.
func (m *model) resize() {
	if m.layout.windowWidth == 0 {
		return
	}
	chromeParts := []string{m.heroView(), m.examplesView(), m.composerPanel(), m.statusBarView()}
	if m.legendVisible {
		chromeParts = append(chromeParts, m.keyLegendView())
	}
	chrome := len(chromeParts)
	for _, part := range chromeParts {
		chrome += lipgloss.Height(part)
	}
	m.layout.Update(m.layout.windowWidth, m.layout.windowHeight, chrome)
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	m.composer.Width = m.layout.viewportWidth - 4
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	view := m.panel.View()
	results := m.buildResultsContent(view)
	m.viewport.SetContent(results.content)
	m.syncCards(results.cards)
	if m.checkRevealNow() > 0 {
		results = m.buildResultsContent(view)
		m.viewport.SetContent(results.content)
	}
}

// syncCards keeps one reveal block per rendered card. A new set of cards
// gets a fresh controller; re-renders only move the existing blocks.
func (m *model) syncCards(spans []cardSpan) {
	if len(spans) == 0 {
		return
	}
	if m.cards == nil {
		deck := make(reveal.Deck, len(spans))
		for i, span := range spans {
			deck[i] = reveal.NewBlock(span.key, span.rect(m.viewport.Width))
		}
		m.cards = deck
		m.revealer = reveal.New(m.config.revealOptions())
		m.revealer.ObserveAll(m.cards)
		return
	}
	for i, span := range spans {
		if i < len(m.cards) {
			m.cards[i].Rect = span.rect(m.viewport.Width)
		}
	}
}

func (m *model) resetReveal() {
	if m.revealer != nil {
		m.revealer.Close()
	}
	m.revealer = nil
	m.cards = nil
}

func (m *model) viewportRoot() reveal.Rect {
	return reveal.Rect{X: 0, Y: m.viewport.YOffset, Width: m.viewport.Width, Height: m.viewport.Height}
}

// checkReveal runs the controller after a scroll and schedules a re-render
// when any card flipped.
func (m *model) checkReveal() {
	if m.checkRevealNow() > 0 {
		m.markViewportDirty()
	}
}

func (m *model) checkRevealNow() int {
	if m.revealer == nil {
		return 0
	}
	revealed := m.revealer.Check(m.viewportRoot())
	for _, event := range m.revealer.Drain() {
		if block, ok := event.Target.(*reveal.Block); ok {
			m.logger.Debug("source card revealed", zap.String("card", block.Key))
		}
	}
	return revealed
}

func (m *model) cardRevealed(key string) bool {
	for _, block := range m.cards {
		if block.Key == key {
			return block.Revealed()
		}
	}
	return false
}
