// Package stubserver is a local stand-in for the answer-generation service.
// It speaks the same POST /api/generate contract and answers from a fixture.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const (
	GeneratePath  = "/api/generate"
	shutdownGrace = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	Addr string
	// TopK caps the sources returned per answer.
	TopK int
	// Latency is added before every answer to mimic model generation.
	Latency time.Duration
}

// Server serves answers from a Fixture.
type Server struct {
	cfg     Config
	fixture *Fixture
	logger  *zap.Logger
	router  chi.Router
}

func New(cfg Config, fixture *Fixture, logger *zap.Logger) *Server {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, fixture: fixture, logger: logger}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	// Browser front ends call the service cross-origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post(GeneratePath, s.handleGenerate)
	return r
}

// Handler exposes the router, eg. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is done, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stub answer service listening", zap.String("addr", s.cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stub server shutdown: %w", err)
	}
	s.logger.Info("stub answer service stopped")
	return nil
}

type generateRequest struct {
	Query *string `json:"query"`
}

type generateResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "body must be {\"query\": string}"})
		return
	}
	query := strings.TrimSpace(*req.Query)

	if s.cfg.Latency > 0 {
		select {
		case <-time.After(s.cfg.Latency):
		case <-r.Context().Done():
			return
		}
	}

	entry := s.fixture.Match(query)
	if entry.Status != 0 {
		writeJSON(w, entry.Status, map[string]string{"detail": http.StatusText(entry.Status)})
		return
	}
	sources := entry.Sources
	if len(sources) > s.cfg.TopK {
		sources = sources[:s.cfg.TopK]
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Answer: entry.Answer, Sources: sources})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
