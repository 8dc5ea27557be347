// Package engine owns the query panel: the current query text, the request
// lifecycle, and the last result rendered from the answer service.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csheth/insightscout/internal/answer"
)

// FallbackAnswer replaces the answer whenever a submission fails. Transport
// details are logged, never shown.
const FallbackAnswer = "Sorry, an error occurred. The server might be asleep or busy. Please try again in a moment."

const sourceTitlePrefix = "Retrieved Source "

// DefaultExamples are the one-click questions offered next to the composer.
var DefaultExamples = []string{
	"What incentives does the Industrial Policy of 2013 offer?",
	"What is the latest news on the Mumbai Trans Harbour Sea Link?",
	"Are there any special provisions for IT parks in Maharashtra?",
}

// Source is one supporting snippet. It has no identity beyond its position.
type Source struct {
	Title   string
	Content string
}

// Result is the answer shown for the most recent completed submission.
type Result struct {
	Answer  string
	Sources []Source
}

// Submission is an accepted request that has moved the panel to Loading.
type Submission struct {
	ID        string
	Query     string
	StartedAt time.Time
}

// Outcome carries what the service returned for a submission.
type Outcome struct {
	Submission Submission
	Response   answer.Response
	Err        error
	Duration   time.Duration
}

// Transition is reported to hooks on every state change.
type Transition struct {
	From         State
	To           State
	SubmissionID string
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger routes failure details to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithExamples overrides the example questions. An empty list keeps the defaults.
func WithExamples(examples []string) Option {
	return func(p *Panel) {
		cleaned := make([]string, 0, len(examples))
		for _, example := range examples {
			if strings.TrimSpace(example) != "" {
				cleaned = append(cleaned, example)
			}
		}
		if len(cleaned) > 0 {
			p.examples = cleaned
		}
	}
}

// WithTransitionHook registers fn to observe state changes.
func WithTransitionHook(fn func(Transition)) Option {
	return func(p *Panel) {
		if fn != nil {
			p.hooks = append(p.hooks, fn)
		}
	}
}

// Panel is driven by a single writer: one UI event loop, or one goroutine
// calling Submit. Run is the only method that may execute elsewhere.
type Panel struct {
	client   answer.Client
	logger   *zap.Logger
	examples []string
	hooks    []func(Transition)

	query  string
	state  State
	result *Result
}

// NewPanel returns an Idle panel that submits through client.
func NewPanel(client answer.Client, opts ...Option) *Panel {
	p := &Panel{
		client:   client,
		logger:   zap.NewNop(),
		examples: append([]string(nil), DefaultExamples...),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetQuery replaces the query text. It never validates and never changes state.
func (p *Panel) SetQuery(text string) {
	p.query = text
}

func (p *Panel) Query() string {
	return p.query
}

func (p *Panel) State() State {
	return p.state
}

// Result returns the last result. ok is false while Idle or Loading.
func (p *Panel) Result() (Result, bool) {
	if p.result == nil {
		return Result{}, false
	}
	return cloneResult(*p.result), true
}

func (p *Panel) Examples() []string {
	return append([]string(nil), p.examples...)
}

// Begin validates a submission and moves the panel to Loading. A non-empty
// text wins over the current query. A query that trims to nothing is
// rejected and leaves the panel untouched.
func (p *Panel) Begin(text string) (Submission, bool) {
	final := text
	if final == "" {
		final = p.query
	}
	if strings.TrimSpace(final) == "" {
		return Submission{}, false
	}
	sub := Submission{
		ID:        uuid.NewString(),
		Query:     final,
		StartedAt: time.Now(),
	}
	p.result = nil
	p.transition(StateLoading, sub.ID)
	p.logger.Debug("submission started", zap.String("id", sub.ID), zap.Int("queryLen", len(final)))
	return sub, true
}

// BeginExample replaces the query with question and begins submitting it.
func (p *Panel) BeginExample(question string) (Submission, bool) {
	p.SetQuery(question)
	return p.Begin(question)
}

// Run performs the service call for sub. It reads no mutable panel state, so
// it may run on a worker goroutine. A panicking client becomes an error.
func (p *Panel) Run(ctx context.Context, sub Submission) (out Outcome) {
	out.Submission = sub
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			out.Response = answer.Response{}
			out.Err = fmt.Errorf("engine: answer client panicked: %v", recovered)
		}
		out.Duration = time.Since(started)
	}()
	if p.client == nil {
		out.Err = fmt.Errorf("engine: no answer client configured")
		return out
	}
	ctx = answer.WithRequestID(ctx, sub.ID)
	out.Response, out.Err = p.client.Generate(ctx, sub.Query)
	return out
}

// Finish applies the terminal transition for out. Outcomes are applied in
// arrival order with no fencing: the last one applied wins.
func (p *Panel) Finish(out Outcome) {
	id := out.Submission.ID
	if out.Err != nil {
		p.logger.Warn("submission failed",
			zap.String("id", id),
			zap.Duration("duration", out.Duration),
			zap.Error(out.Err),
		)
		p.result = &Result{Answer: FallbackAnswer, Sources: []Source{}}
		p.transition(StateFailed, id)
		return
	}
	result := BuildResult(out.Response)
	p.logger.Info("submission succeeded",
		zap.String("id", id),
		zap.Duration("duration", out.Duration),
		zap.Int("sources", len(result.Sources)),
	)
	p.result = &result
	p.transition(StateSucceeded, id)
}

// Submit runs a whole submission synchronously and reports whether it was
// accepted. Every failure ends in StateFailed; nothing is returned as an error.
func (p *Panel) Submit(ctx context.Context, text string) bool {
	sub, ok := p.Begin(text)
	if !ok {
		return false
	}
	p.Finish(p.Run(ctx, sub))
	return true
}

// SelectExample is SetQuery(question) followed by Submit(ctx, question).
func (p *Panel) SelectExample(ctx context.Context, question string) bool {
	p.SetQuery(question)
	return p.Submit(ctx, question)
}

// BuildResult titles each source by its 1-based position, keeping order.
func BuildResult(resp answer.Response) Result {
	sources := make([]Source, len(resp.Sources))
	for i, content := range resp.Sources {
		sources[i] = Source{
			Title:   fmt.Sprintf("%s%d", sourceTitlePrefix, i+1),
			Content: content,
		}
	}
	return Result{Answer: resp.Answer, Sources: sources}
}

func (p *Panel) transition(to State, id string) {
	from := p.state
	p.state = to
	for _, hook := range p.hooks {
		hook(Transition{From: from, To: to, SubmissionID: id})
	}
}

func cloneResult(r Result) Result {
	return Result{Answer: r.Answer, Sources: append([]Source{}, r.Sources...)}
}
