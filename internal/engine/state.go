package engine

import "strings"

// State is the lifecycle stage of a submission.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a submission.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Placeholder selects what the results pane shows when there is no answer.
type Placeholder int

const (
	PlaceholderNone Placeholder = iota
	PlaceholderEmpty
	PlaceholderLoading
)

// ViewState is everything the presentation layer reads from a Panel.
type ViewState struct {
	State           State
	Placeholder     Placeholder
	SubmitEnabled   bool
	ExamplesEnabled bool
	Answer          string
	Sources         []Source
	ShowSources     bool
}

// View derives the rendering contract from the current state.
func (p *Panel) View() ViewState {
	loading := p.state == StateLoading
	view := ViewState{
		State:           p.state,
		SubmitEnabled:   !loading && strings.TrimSpace(p.query) != "",
		ExamplesEnabled: !loading,
	}
	switch {
	case loading:
		view.Placeholder = PlaceholderLoading
	case p.result == nil:
		view.Placeholder = PlaceholderEmpty
	default:
		result := cloneResult(*p.result)
		view.Answer = result.Answer
		view.Sources = result.Sources
		view.ShowSources = len(result.Sources) > 0
	}
	return view
}
