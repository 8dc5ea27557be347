package answer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

//go:generate mockgen -source=answer.go -destination=../mocks/answer/mock_client.go -package=mock_answer

const (
	// DefaultEndpoint is the hosted answer-generation service.
	DefaultEndpoint = "https://grievousxx-maharashtra-insights-engine.hf.space/api/generate"
	// Hosted inference spaces sleep when idle, so cold starts can take well
	// over a minute.
	DefaultTimeout   = 2 * time.Minute
	DefaultUserAgent = "insightscout"

	maxErrorExcerpt = 512
)

// ErrMalformedResponse reports a 2xx reply whose body does not carry an
// answer string and a sources array of strings.
var ErrMalformedResponse = errors.New("answer: malformed response body")

// Client generates an answer with supporting sources for a question.
type Client interface {
	Generate(ctx context.Context, query string) (Response, error)
}

// Response is the decoded body of a successful generate call. Sources keep
// the order returned by the service.
type Response struct {
	Answer  string
	Sources []string
}

// StatusError is returned for any non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("answer: service responded with %d", e.StatusCode)
	}
	return fmt.Sprintf("answer: service responded with %d (%s)", e.StatusCode, e.Body)
}

// Config describes how to reach the answer service.
type Config struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

func clipExcerpt(value string) string {
	runes := []rune(value)
	if len(runes) <= maxErrorExcerpt {
		return value
	}
	return string(runes[:maxErrorExcerpt]) + "…"
}
