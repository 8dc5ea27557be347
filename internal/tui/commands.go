package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/insightscout/internal/engine"
)

// submissionJob performs the service call off the event loop. The panel is
// only mutated later, when the result message is applied.
func submissionJob(panel *engine.Panel, sub engine.Submission) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		out := panel.Run(ctx, sub)
		return submissionResultMsg{outcome: out}, out.Err
	}
}

func entranceCmd(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return entranceMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return entranceMsg{} })
}

func jobBadge(job jobSnapshot) string {
	switch job.Status {
	case jobStatusRunning:
		return fmt.Sprintf("%s…", job.Kind)
	case jobStatusFailed:
		return fmt.Sprintf("%s ✗ %s", job.Kind, roundDuration(job.Duration))
	default:
		return fmt.Sprintf("%s ✓ %s", job.Kind, roundDuration(job.Duration))
	}
}

func roundDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func trimmedQuestion(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
