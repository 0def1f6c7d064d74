// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/assessrec/core"
)

// Default server settings.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 1 << 20
)

var (
	// ErrServiceRequired is returned when no recommendation service is provided.
	ErrServiceRequired = errors.New("recommendation service required")
)

// Service is the recommendation backend the HTTP layer delegates to.
type Service interface {
	Recommend(ctx context.Context, query string) ([]core.Recommendation, error)
	Len() int
}

// Server exposes a Service over HTTP.
type Server struct {
	service      Service
	router       chi.Router
	timeout      time.Duration
	maxBodyBytes int64
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTimeout bounds how long a single request may run.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max body size must be positive, got %d", n)
		}
		s.maxBodyBytes = n
		return nil
	}
}

// New creates a Server routing to service.
func New(service Service, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}

	s := &Server{
		service:      service,
		timeout:      DefaultTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Post("/recommend", s.handleRecommend)
	r.Get("/health", s.handleHealth)
	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type recommendRequest struct {
	Query *string `json:"query"`
}

type recommendResponse struct {
	Recommendations []core.Recommendation `json:"recommendations"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Assessments int    `json:"assessments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	query, err := s.decodeQuery(w, r)
	if err != nil {
		s.logger.Debug("rejected request", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	recs, err := s.service.Recommend(r.Context(), query)
	if err != nil {
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			// middleware.Timeout answers with 504
			return
		}
		s.logger.Error("recommend failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, core.ErrInternalScoring)
		return
	}
	if recs == nil {
		recs = []core.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

// decodeQuery reads {"query": string}. Missing, null or non-string queries are malformed,
// as is anything but whitespace after the object.
func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(body)

	var req recommendRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: empty body", core.ErrMalformedRequest)
		}
		return "", fmt.Errorf("%w: %w", core.ErrMalformedRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: unexpected data after request object", core.ErrMalformedRequest)
	}
	if req.Query == nil {
		return "", fmt.Errorf("%w: query is required", core.ErrMalformedRequest)
	}
	return *req.Query, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Assessments: s.service.Len()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
