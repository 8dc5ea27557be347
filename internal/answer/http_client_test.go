package answer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Generate(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want          Response
		wantErr       bool
		wantMalformed bool
		wantStatus    int
	}{
		{
			name: "answer with ordered sources",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"answer":"X","sources":["a","b"]}`))
			},
			want: Response{Answer: "X", Sources: []string{"a", "b"}},
		},
		{
			name: "json body with text/plain content type",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = w.Write([]byte(`{"answer":"X","sources":["a","b"]}`))
			},
			want: Response{Answer: "X", Sources: []string{"a", "b"}},
		},
		{
			name: "json body without content type",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = nil
				_, _ = w.Write([]byte(`{"answer":"X","sources":[]}`))
			},
			want: Response{Answer: "X", Sources: []string{}},
		},
		{
			name: "empty sources array",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"answer":"nothing found","sources":[]}`))
			},
			want: Response{Answer: "nothing found", Sources: []string{}},
		},
		{
			name: "server error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"CUDA out of memory"}`))
			},
			wantErr:    true,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "not found",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "missing sources field",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"answer":"X"}`))
			},
			wantErr:       true,
			wantMalformed: true,
		},
		{
			name: "missing answer field",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"sources":["a"]}`))
			},
			wantErr:       true,
			wantMalformed: true,
		},
		{
			name: "plain text body",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = w.Write([]byte("Space is sleeping"))
			},
			wantErr:       true,
			wantMalformed: true,
		},
		{
			name: "sources of the wrong type",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"answer":"X","sources":[1,2]}`))
			},
			wantErr:       true,
			wantMalformed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.mockServerHandler(t, w, r)
			}))
			t.Cleanup(server.Close)

			client := NewClient(Config{Endpoint: server.URL + "/api/generate", Timeout: 5 * time.Second})
			t.Cleanup(func() { _ = client.Close() })

			got, err := client.Generate(context.Background(), "What incentives does the Industrial Policy of 2013 offer?")
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, Response{}, got)
			if tc.wantMalformed {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			}
			if tc.wantStatus != 0 {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr), "expected *StatusError, got %T", err)
				assert.Equal(t, tc.wantStatus, statusErr.StatusCode)
			}
		})
	}
}

func TestHTTPClient_GenerateRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-42", r.Header.Get(RequestIDHeader))
		assert.Equal(t, "insightscout-test", r.Header.Get("User-Agent"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]any{"query": "Are there any special provisions for IT parks?"}, payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Yes","sources":["IT/ITES Policy 2015"]}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{Endpoint: server.URL + "/api/generate", UserAgent: "insightscout-test"})
	ctx := WithRequestID(context.Background(), "req-42")
	got, err := client.Generate(ctx, "Are there any special provisions for IT parks?")
	require.NoError(t, err)
	assert.Equal(t, "Yes", got.Answer)
	assert.Equal(t, []string{"IT/ITES Policy 2015"}, got.Sources)
}

func TestHTTPClient_GenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL + "/api/generate"
	server.Close()

	client := NewClient(Config{Endpoint: endpoint, Timeout: time.Second})
	_, err := client.Generate(context.Background(), "anything")
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestHTTPClient_GenerateHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client := NewClient(Config{Endpoint: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Generate(ctx, "slow")
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)

	client := NewClient(Config{Endpoint: "http://localhost:9/api/generate"})
	assert.Equal(t, "http://localhost:9/api/generate", client.Endpoint())
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "answer: service responded with 503", (&StatusError{StatusCode: 503}).Error())
	assert.Contains(t, (&StatusError{StatusCode: 500, Body: "boom"}).Error(), "(boom)")
}
