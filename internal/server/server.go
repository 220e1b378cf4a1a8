// Package server exposes a resolver over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/resolve?coordinate=g:a[:ext[:cls]][:ver]&provider=true&persistent=true
//	POST /v1/resolve      {"requests": [{"coordinate": "...", "provider": true}]}
//	GET  /v1/translate?coordinate=...
//	GET  /v1/relatives?coordinate=...
//	GET  /metrics         when a metrics handler is configured
//
// Every response carries an X-Request-Id header, taken from the request
// or generated.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/buildinfo"
	"github.com/matzehuels/sysresolve/pkg/depmap"
	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/observability"
	"github.com/matzehuels/sysresolve/pkg/resolver"
)

// RequestIDHeader carries the request id.
const RequestIDHeader = "X-Request-Id"

// MaxBatch bounds the number of requests in one POST /v1/resolve.
const MaxBatch = 1000

const maxBodyBytes = 1 << 20

// Options configures a [Server].
type Options struct {
	Resolver resolver.Resolver

	// Graph answers translate and relatives queries. Nil disables them.
	Graph *depmap.Graph

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	resolver resolver.Resolver
	graph    *depmap.Graph
	logger   *log.Logger
	router   chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		resolver: opts.Resolver,
		graph:    opts.Graph,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Post("/resolve", s.handleResolveBatch)
		if s.graph != nil {
			r.Get("/translate", s.handleTranslate)
			r.Get("/relatives", s.handleRelatives)
		}
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ===== Middleware =====

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		w.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, duration)
		s.logger.Debug("request",
			"id", RequestID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", duration)
	})
}

// ===== Handlers =====

// ResolveResponse is one resolution outcome.
type ResolveResponse struct {
	Coordinate string `json:"coordinate"`
	PURL       string `json:"purl"`
	Found      bool   `json:"found"`
	resolver.Result
}

// BatchRequest is the body of POST /v1/resolve.
type BatchRequest struct {
	Requests []BatchItem `json:"requests"`
}

// BatchItem is one request of a batch.
type BatchItem struct {
	Coordinate string `json:"coordinate"`
	Provider   bool   `json:"provider,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
}

// BatchResponse is the reply to POST /v1/resolve, in request order.
type BatchResponse struct {
	Results []ResolveResponse `json:"results"`
}

// TranslateResponse lists coordinates related to the queried one.
type TranslateResponse struct {
	Coordinate  string   `json:"coordinate"`
	Coordinates []string `json:"coordinates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	item := BatchItem{
		Coordinate: q.Get("coordinate"),
		Provider:   queryBool(q.Get("provider")),
		Persistent: queryBool(q.Get("persistent")),
	}
	res, err := s.resolve(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolveBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if len(body.Requests) > MaxBatch {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "batch of %d exceeds the limit of %d", len(body.Requests), MaxBatch))
		return
	}

	out := BatchResponse{Results: make([]ResolveResponse, 0, len(body.Requests))}
	for _, item := range body.Requests {
		res, err := s.resolve(r.Context(), item)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out.Results = append(out.Results, res)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	s.writeCoordinates(w, r, s.graph.Translate)
}

func (s *Server) handleRelatives(w http.ResponseWriter, r *http.Request) {
	s.writeCoordinates(w, r, s.graph.RelativesOf)
}

func (s *Server) writeCoordinates(w http.ResponseWriter, r *http.Request, fn func(artifact.Coordinate) []artifact.Coordinate) {
	c, err := parseCoordinate(r.URL.Query().Get("coordinate"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := TranslateResponse{Coordinate: c.String()}
	for _, t := range fn(c) {
		resp.Coordinates = append(resp.Coordinates, t.String())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolve(ctx context.Context, item BatchItem) (ResolveResponse, error) {
	c, err := parseCoordinate(item.Coordinate)
	if err != nil {
		return ResolveResponse{}, err
	}
	res, err := s.resolver.Resolve(ctx, resolver.Request{
		Artifact:             c,
		ProviderNeeded:       item.Provider,
		PersistentFileNeeded: item.Persistent,
	})
	if err != nil {
		return ResolveResponse{}, err
	}
	return ResolveResponse{Coordinate: c.String(), PURL: c.PURL(), Found: res.Found(), Result: res}, nil
}

func parseCoordinate(s string) (artifact.Coordinate, error) {
	if s == "" {
		return artifact.Coordinate{}, errors.New(errors.ErrCodeInvalidInput, "missing coordinate parameter")
	}
	return artifact.ParseAny(s)
}

func queryBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

// ===== Responses =====

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCoordinate:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	}
	msg := errors.UserMessage(err)
	if cause := stderrors.Unwrap(err); cause != nil {
		msg += ": " + cause.Error()
	}
	s.writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  string(errors.GetCode(err)),
	})
}
