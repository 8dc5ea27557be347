package tui

import "github.com/csheth/insightscout/internal/engine"

type focusArea int

const (
	focusComposer focusArea = iota
	focusExamples
)

const (
	heroTitle   = "Maharashtra Policy Insights"
	heroTagline = "Ask questions about industrial policy and infrastructure documents."
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	composerPlaceholder       = "Ask a question about Maharashtra's policies…"
	emptyStateTitle           = "Your generated insights will appear here."
	emptyStateHint            = "Type a question below or pick an example to get started."
	answerHeading             = "Generated Answer"
	sourcesHeading            = "Sources Found"
	shimmerRows               = 4
)

// submissionResultMsg carries a finished service call back to the event loop.
type submissionResultMsg struct {
	outcome engine.Outcome
}

// entranceMsg fires once the header's entrance delay has elapsed.
type entranceMsg struct{}
