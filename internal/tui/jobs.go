package tui

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type jobKind string

type jobStatus string

const (
	jobKindGenerate jobKind = "generate"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

// maxJobHistory bounds the finished jobs kept for the status bar.
const maxJobHistory = 3

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
	logger  *zap.Logger
	jobs    map[string]jobSnapshot
}

func newJobBus(logger *zap.Logger) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{logger: logger, jobs: map[string]jobSnapshot{}}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start emits a running signal, then the runner's payload wrapped in a
// result envelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	logger := b.logger
	runCmd := func() tea.Msg {
		payload, err := runner(context.Background())
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		logger.Debug("job finished",
			zap.String("job", id),
			zap.String("status", string(snapshot.Status)),
			zap.Duration("duration", snapshot.Duration),
			zap.Error(err),
		)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// Record stores a snapshot for the status bar. Only the newest finished jobs
// are kept.
func (b *jobBus) Record(snapshot jobSnapshot) {
	b.jobs[snapshot.ID] = snapshot
	var finished []jobSnapshot
	for _, job := range b.jobs {
		if job.Status != jobStatusRunning {
			finished = append(finished, job)
		}
	}
	if len(finished) <= maxJobHistory {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].CompletedAt.After(finished[j].CompletedAt)
	})
	for _, job := range finished[maxJobHistory:] {
		delete(b.jobs, job.ID)
	}
}

// Snapshots lists recorded jobs, oldest first.
func (b *jobBus) Snapshots() []jobSnapshot {
	out := make([]jobSnapshot, 0, len(b.jobs))
	for _, job := range b.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

func (b *jobBus) Running() int {
	count := 0
	for _, job := range b.jobs {
		if job.Status == jobStatusRunning {
			count++
		}
	}
	return count
}
