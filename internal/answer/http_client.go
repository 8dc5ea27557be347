package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"resty.dev/v3"
)

// RequestIDHeader carries the per-submission id so service logs can be
// matched against client logs.
const RequestIDHeader = "X-Request-ID"

type generateRequest struct {
	Query string `json:"query"`
}

// Pointer fields distinguish an absent key from an empty value.
type generateResponse struct {
	Answer  *string   `json:"answer"`
	Sources *[]string `json:"sources"`
}

// HTTPClient talks to the answer service over JSON/HTTP.
type HTTPClient struct {
	http     *resty.Client
	endpoint string
}

// NewClient builds a resty-backed client for the configured endpoint.
func NewClient(cfg Config) *HTTPClient {
	cfg = cfg.withDefaults()
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", cfg.UserAgent)
	return &HTTPClient{http: client, endpoint: cfg.Endpoint}
}

// Endpoint reports the URL requests are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

func (c *HTTPClient) Close() error {
	return c.http.Close()
}

// Generate posts the query and decodes the answer. It never retries; a failed
// call is reported to the caller as is.
func (c *HTTPClient) Generate(ctx context.Context, query string) (Response, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestIDFrom(ctx)).
		SetBody(generateRequest{Query: query}).
		Post(c.endpoint)
	if err != nil {
		return Response{}, fmt.Errorf("answer: post %s: %w", c.endpoint, err)
	}
	if !response.IsSuccess() {
		return Response{}, &StatusError{
			StatusCode: response.StatusCode(),
			Body:       clipExcerpt(strings.TrimSpace(response.String())),
		}
	}
	// The body is JSON whatever Content-Type the service sends.
	var decoded generateResponse
	if err := json.Unmarshal(response.Bytes(), &decoded); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return decoded.toResponse()
}

func (r *generateResponse) toResponse() (Response, error) {
	if r.Answer == nil {
		return Response{}, fmt.Errorf("%w: missing answer", ErrMalformedResponse)
	}
	if r.Sources == nil {
		return Response{}, fmt.Errorf("%w: missing sources", ErrMalformedResponse)
	}
	sources := append([]string(nil), (*r.Sources)...)
	if sources == nil {
		sources = []string{}
	}
	return Response{Answer: *r.Answer, Sources: sources}, nil
}

type requestIDKey struct{}

// WithRequestID attaches the id sent in the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
