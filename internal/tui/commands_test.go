package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/csheth/insightscout/internal/answer"
	"github.com/csheth/insightscout/internal/engine"
)

type fakeAnswerClient struct {
	resp  answer.Response
	err   error
	calls int
}

func (f *fakeAnswerClient) Generate(ctx context.Context, query string) (answer.Response, error) {
	f.calls++
	return f.resp, f.err
}

func newTestModel(t *testing.T, client answer.Client) *model {
	t.Helper()
	teaModel, ok := New(Config{Panel: engine.NewPanel(client)}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func TestSubmissionJobReturnsOutcome(t *testing.T) {
	client := &fakeAnswerClient{resp: answer.Response{Answer: "ok", Sources: []string{"a"}}}
	panel := engine.NewPanel(client)
	sub, ok := panel.Begin("question")
	if !ok {
		t.Fatal("begin rejected a non-empty question")
	}

	msg, err := submissionJob(panel, sub)(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := msg.(submissionResultMsg)
	if !ok {
		t.Fatalf("expected submissionResultMsg, got %T", msg)
	}
	if result.outcome.Submission.ID != sub.ID {
		t.Fatalf("outcome for wrong submission: %q", result.outcome.Submission.ID)
	}
	if panel.State() != engine.StateLoading {
		t.Fatalf("running the job must not finish the panel, got %v", panel.State())
	}
}

func TestSubmissionJobReportsFailure(t *testing.T) {
	client := &fakeAnswerClient{err: errors.New("boom")}
	panel := engine.NewPanel(client)
	sub, _ := panel.Begin("question")

	msg, err := submissionJob(panel, sub)(context.Background())
	if err == nil {
		t.Fatal("expected the job to surface the client error")
	}
	if got := msg.(submissionResultMsg).outcome.Err; got == nil {
		t.Fatal("outcome should carry the error for Finish")
	}
}

func TestJobBusKeepsRecentHistory(t *testing.T) {
	bus := newJobBus(nil)
	base := time.Now()
	for i := 0; i < 5; i++ {
		id := bus.nextID(jobKindGenerate)
		bus.Record(jobSnapshot{ID: id, Kind: jobKindGenerate, Status: jobStatusRunning, StartedAt: base.Add(time.Duration(i) * time.Second)})
		bus.Record(jobSnapshot{
			ID:          id,
			Kind:        jobKindGenerate,
			Status:      jobStatusSucceeded,
			StartedAt:   base.Add(time.Duration(i) * time.Second),
			CompletedAt: base.Add(time.Duration(i)*time.Second + time.Millisecond),
		})
	}
	snapshots := bus.Snapshots()
	if len(snapshots) != maxJobHistory {
		t.Fatalf("expected %d snapshots, got %d", maxJobHistory, len(snapshots))
	}
	if snapshots[0].ID != "generate-3" || snapshots[2].ID != "generate-5" {
		t.Fatalf("unexpected history order: %+v", snapshots)
	}
	if bus.Running() != 0 {
		t.Fatalf("no jobs should be running, got %d", bus.Running())
	}
}

func TestJobBadge(t *testing.T) {
	cases := []struct {
		job  jobSnapshot
		want string
	}{
		{jobSnapshot{Kind: jobKindGenerate, Status: jobStatusRunning}, "generate…"},
		{jobSnapshot{Kind: jobKindGenerate, Status: jobStatusSucceeded, Duration: 1234 * time.Millisecond}, "generate ✓ 1.2s"},
		{jobSnapshot{Kind: jobKindGenerate, Status: jobStatusFailed, Duration: 40 * time.Millisecond}, "generate ✗ 40ms"},
	}
	for _, tc := range cases {
		if got := jobBadge(tc.job); got != tc.want {
			t.Fatalf("jobBadge(%+v) = %q, want %q", tc.job, got, tc.want)
		}
	}
}

func TestEntranceCmdWithoutDelay(t *testing.T) {
	if _, ok := entranceCmd(0)().(entranceMsg); !ok {
		t.Fatal("zero delay should emit entranceMsg immediately")
	}
}

func TestTrimmedQuestion(t *testing.T) {
	if got := trimmedQuestion("  short  ", 20); got != "short" {
		t.Fatalf("unexpected trim: %q", got)
	}
	got := trimmedQuestion(strings.Repeat("x", 30), 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("expected a 10 rune ellipsised label, got %q", got)
	}
}
