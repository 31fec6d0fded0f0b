// Package http exposes an Editor over a small JSON/XML API.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

// Server serves one Editor.
type Server struct {
	Editor  *arbor.Editor
	Streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams attaches the stream manager whose hooks the editor was built with.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor *arbor.Editor, opts ...Option) http.Handler {
	s := &Server{
		Editor: editor,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/tree", s.GetTree)
	r.Get("/validate", s.GetValidate)
	r.Get("/document", s.GetDocument)
	r.Put("/document", s.PutDocument)
	r.Post("/undo", s.PostUndo)
	r.Post("/redo", s.PostRedo)
	r.Post("/arrange", s.PostArrange)
	r.Post("/clear", s.PostClear)
	r.Put("/layout", s.PutLayout)
	r.Put("/mode", s.PutMode)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Post("/{name}/load", s.LoadDocument)
		r.Post("/{name}/save", s.SaveDocument)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	})
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Status())
}

// GetTree handles GET /tree, returning the current tab as a JSON tree.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Tree())
}

// GetValidate handles GET /validate.
func (s *Server) GetValidate(w http.ResponseWriter, r *http.Request) {
	issues := s.Editor.Diagnose()
	if issues == nil {
		issues = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":  s.Editor.Status().Valid,
		"issues": issues,
	})
}

// GetDocument handles GET /document, exporting the current tab as XML.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	data, err := s.Editor.SaveXML()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(data)
}

// PutDocument handles PUT /document, replacing the current tab.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(sanitize.MaxDocumentSize())+1))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	clean, err := sanitize.Document(body)
	if err != nil {
		s.logger.Warn("Document rejected", "err", err, "size", len(body))
		http.Error(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.Editor.LoadXML(clean); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Status())
}

// PostUndo handles POST /undo.
func (s *Server) PostUndo(w http.ResponseWriter, r *http.Request) {
	s.statusAfter(w, s.Editor.Undo())
}

// PostRedo handles POST /redo.
func (s *Server) PostRedo(w http.ResponseWriter, r *http.Request) {
	s.statusAfter(w, s.Editor.Redo())
}

// PostArrange handles POST /arrange.
func (s *Server) PostArrange(w http.ResponseWriter, r *http.Request) {
	s.statusAfter(w, s.Editor.AutoArrange())
}

// PostClear handles POST /clear.
func (s *Server) PostClear(w http.ResponseWriter, r *http.Request) {
	s.statusAfter(w, s.Editor.Clear())
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

// PutLayout handles PUT /layout. An empty layout toggles.
func (s *Server) PutLayout(w http.ResponseWriter, r *http.Request) {
	var body layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var refreshed []string
	var err error
	if body.Layout == "" {
		refreshed, err = s.Editor.ToggleLayout()
	} else {
		l, perr := domain.ParseLayout(body.Layout)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		refreshed, err = s.Editor.SetLayout(l)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if refreshed == nil {
		refreshed = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"refreshed": refreshed})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// PutMode handles PUT /mode.
func (s *Server) PutMode(w http.ResponseWriter, r *http.Request) {
	var body modeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	m, err := domain.ParseMode(body.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Editor.SetMode(m)
	s.writeJSON(w, http.StatusOK, s.Editor.Status())
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.Editor.Documents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// LoadDocument handles POST /documents/{name}/load.
func (s *Server) LoadDocument(w http.ResponseWriter, r *http.Request) {
	name, err := sanitize.Name(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.statusAfter(w, s.Editor.Load(r.Context(), name))
}

// SaveDocument handles POST /documents/{name}/save.
func (s *Server) SaveDocument(w http.ResponseWriter, r *http.Request) {
	name, err := sanitize.Name(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.statusAfter(w, s.Editor.Save(r.Context(), name))
}

func (s *Server) statusAfter(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Status())
}

// writeError maps editor errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var shape *domain.ShapeError
	var parse *domain.ParseError
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &shape), errors.As(err, &parse), errors.Is(err, domain.ErrUnknownModel):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLocked):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrDocumentNotFound):
		code = http.StatusNotFound
	case errors.Is(err, arbor.ErrNoStore):
		code = http.StatusNotImplemented
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
