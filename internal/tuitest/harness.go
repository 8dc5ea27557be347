package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second

	pollInterval = 25 * time.Millisecond
)

// Step is one scripted interaction. The harness sleeps for Delay, then waits
// for Until to appear in the rendered output if set, then writes Input.
type Step struct {
	Delay time.Duration
	Until string
	Input []byte
}

// Config configures how the harness spawns and drives the CLI program.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	// AllowInterrupt accepts a program killed by SIGINT, which is how Ctrl+C
	// ends a Bubble Tea program that does not trap it.
	AllowInterrupt bool
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Recording contains the raw terminal stream plus parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// session owns one running program and everything it has written.
type session struct {
	cfg  Config
	cmd  *exec.Cmd
	ptmx *os.File

	mu      sync.Mutex
	output  bytes.Buffer
	drained chan struct{}
}

// Run executes the configured command inside a PTY, replays the scripted
// steps, and captures every byte written to the terminal.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = cfg.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	s, err := start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.ptmx.Close() }()

	started := time.Now()
	if err := s.play(ctx); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	// Closing the PTY lets the reader goroutine finish draining.
	_ = s.ptmx.Close()
	<-s.drained

	raw := s.snapshot()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(started)}, nil
}

func start(ctx context.Context, cfg Config) (*session, error) {
	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &session{cfg: cfg, cmd: cmd, ptmx: ptmx, drained: make(chan struct{})}
	go s.read()
	return s, nil
}

// read copies program output until the PTY closes, answering terminal
// probes along the way.
func (s *session) read() {
	defer close(s.drained)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			s.mu.Lock()
			_, _ = s.output.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *session) snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.output.Bytes())
}

func (s *session) play(ctx context.Context) error {
	for idx, step := range s.cfg.Steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: step %d: context cancelled before script finished: %w", idx, ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if step.Until != "" {
			if err := s.awaitText(ctx, step.Until); err != nil {
				return fmt.Errorf("tuitest: step %d: %w", idx, err)
			}
		}
		if len(step.Input) > 0 {
			if _, err := s.ptmx.Write(step.Input); err != nil {
				return fmt.Errorf("tuitest: step %d: write input: %w", idx, err)
			}
		}
	}
	return nil
}

// awaitText polls the plain-text output until it contains text.
func (s *session) awaitText(ctx context.Context, text string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if strings.Contains(stripANSI(string(s.snapshot())), text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%q never rendered: %w", text, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *session) wait(ctx context.Context) error {
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil || s.exitAllowed(err) {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
}

func (s *session) exitAllowed(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && slices.Contains(s.cfg.AllowedExitCodes, exitErr.ExitCode()) {
		return true
	}
	return s.cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	if !slices.ContainsFunc(env, func(entry string) bool { return strings.HasPrefix(entry, "TERM=") }) {
		env = append(env, "TERM=xterm-256color")
	}
	return env
}

// Type returns a step that writes text after delay.
func Type(delay time.Duration, text string) Step {
	return Step{Delay: delay, Input: []byte(text)}
}

// Press returns a step that sends a key sequence after delay.
func Press(delay time.Duration, key []byte) Step {
	return Step{Delay: delay, Input: key}
}

// PressWhen returns a step that sends key once text is on screen.
func PressWhen(text string, key []byte) Step {
	return Step{Until: text, Input: key}
}

var (
	KeyEnter = []byte{'\r'}
	KeyCtrlC = []byte{3}
	// KeyEsc clears the composer, or quits when it is empty.
	KeyEsc = []byte{27}
	// KeyTab moves focus between the composer and the examples.
	KeyTab = []byte{'\t'}

	KeyUp       = []byte("\x1b[A")
	KeyDown     = []byte("\x1b[B")
	KeyPageUp   = []byte("\x1b[5~")
	KeyPageDown = []byte("\x1b[6~")
)
