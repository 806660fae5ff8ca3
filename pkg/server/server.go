// Package server exposes a laid-out city over a read-only HTTP API.
//
// The scene handed to [New] is never modified; every handler only reads it,
// so requests are served concurrently without locking.
//
// # Routes
//
//	GET /healthz                     liveness probe
//	GET /api/scene                   full scene JSON
//	GET /api/scene.svg               top-down site plan
//	GET /api/pickables?depth=&kind=  hit-test targets, optionally filtered
//	GET /api/tooltip?path=           tooltip for one node
//
// Errors are JSON objects with a machine-readable code and a message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/render/svg"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

const shutdownTimeout = 5 * time.Second

// Server serves one immutable scene.
type Server struct {
	scene     *scene.Scene
	sceneJSON []byte
	plan      []byte
	logger    *log.Logger
	svgOpts   []svg.Option
	router    chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithSVGOptions passes options to the site plan renderer.
func WithSVGOptions(opts ...svg.Option) Option {
	return func(s *Server) { s.svgOpts = opts }
}

// New prepares a server for sc. The scene JSON and site plan are encoded once.
func New(sc *scene.Scene, opts ...Option) (*Server, error) {
	s := &Server{scene: sc}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	data, err := scene.Marshal(sc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode scene")
	}
	s.sceneJSON = data
	s.plan = svg.Render(sc, s.svgOpts...)
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scene", s.handleScene)
		r.Get("/scene.svg", s.handlePlan)
		r.Get("/pickables", s.handlePickables)
		r.Get("/tooltip", s.handleTooltip)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errs.New(errs.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving scene", "addr", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"pickables": len(s.scene.Pickables()),
	})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.sceneJSON)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(s.plan)
}

func (s *Server) handlePickables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	idx := s.scene.Index()

	depth := idx.MaxDepth()
	if raw := q.Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "depth must be a non-negative integer, got %q", raw))
			return
		}
		depth = d
	}

	var items []scene.Pickable
	switch kind := strings.ToLower(q.Get("kind")); kind {
	case "":
		items = idx.UpToDepth(depth)
	case "file", "files":
		items = idx.Where(tree.KindFile, depth)
	case "dir", "dirs", "directory", "directories":
		items = idx.Where(tree.KindDirectory, depth)
	default:
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "unknown kind %q", kind))
		return
	}
	if items == nil {
		items = []scene.Pickable{}
	}
	writeJSON(w, http.StatusOK, items)
}

type tooltipResponse struct {
	scene.Tooltip
	Lines []string `json:"lines"`
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if err := errs.ValidatePath(path); err != nil {
		writeError(w, err)
		return
	}
	tip, ok := s.scene.Tooltip(path)
	if !ok {
		writeError(w, errs.New(errs.ErrCodeNotFound, "no node at %q", path))
		return
	}
	writeJSON(w, http.StatusOK, tooltipResponse{Tooltip: tip, Lines: tip.Lines()})
}

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func statusFor(code errs.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(string(code), "NOT_FOUND"):
		return http.StatusNotFound
	case code == errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
