// Package http exposes uploaded solver trees over HTTP and provides the
// matching client, an implementation of ports.NodeService.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/observability"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// DefaultMaxUploadSize bounds a dataset upload.
const DefaultMaxUploadSize = 32 << 20

// Server serves the node service API over a session manager.
type Server struct {
	sessions   *session.Manager
	streams    *StreamManager
	metrics    *observability.Metrics
	logger     *slog.Logger
	maxUpload  int64
	depth      int
	cardSample int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request metrics and serves them at /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMaxUploadSize bounds the upload body.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithSnapshotLimits sets the default depth and card sample of /api/tree.
func WithSnapshotLimits(depth, cardSample int) Option {
	return func(s *Server) {
		s.depth = depth
		s.cardSample = cardSample
	}
}

// NewServer creates a server over the given session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:   sessions,
		logger:     logging.NewNop(),
		maxUpload:  DefaultMaxUploadSize,
		depth:      gametree.DefaultSnapshotDepth,
		cardSample: gametree.DefaultCardSample,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(enableCORS)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Get("/health", s.GetHealth)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/api/upload", s.Upload)
		r.Get("/api/sessions", s.ListSessions)
		r.Delete("/api/session/{id}", s.DeleteSession)
		r.Get("/api/tree/{id}", s.GetTree)
		r.Get("/api/node/{id}", s.GetNode)
		r.Get("/api/direct_node/{id}", s.GetDirectNode)
		r.Get("/api/strategy/{id}", s.GetStrategy)
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UploadResponse answers a successful upload.
type UploadResponse struct {
	SessionID string            `json:"session_id"`
	Filename  string            `json:"filename"`
	GameInfo  gametree.GameInfo `json:"game_info"`
}

// Upload handles POST /api/upload with a multipart "file" field.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.maxUpload))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "No file part")
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "No selected file")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	d, err := s.sessions.Create(r.Context(), header.Filename, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tree, err := s.sessions.Tree(r.Context(), d.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.streams.Broadcast(DatasetEvent{Type: "created", SessionID: d.ID, Filename: d.Filename})
	s.updateSessionGauge(r)
	writeJSON(w, http.StatusOK, UploadResponse{
		SessionID: d.ID,
		Filename:  d.Filename,
		GameInfo:  tree.GameInfo(),
	})
}

// ListSessions handles GET /api/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// DeleteSession handles DELETE /api/session/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.streams.Broadcast(DatasetEvent{Type: "deleted", SessionID: id})
	s.updateSessionGauge(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// GetTree handles GET /api/tree/{id}.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	var depth *int
	if err := runtime.BindQueryParameter("form", true, false, "depth", r.URL.Query(), &depth); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	d := s.depth
	if depth != nil {
		d = *depth
	}
	writeJSON(w, http.StatusOK, tree.Snapshot(d, s.cardSample))
}

// GetNode handles GET /api/node/{id}?path=.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	addr, ok := s.address(w, r)
	if !ok {
		return
	}
	info, err := tree.Info(addr)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetDirectNode handles GET /api/direct_node/{id}?path=&actions=.
func (s *Server) GetDirectNode(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	addr, ok := s.address(w, r)
	if !ok {
		return
	}
	var raw []string
	if err := runtime.BindQueryParameter("form", false, false, "actions", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	actions := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			actions = append(actions, a)
		}
	}

	info, err := tree.Replay(addr, actions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("node resolved by replay", "path", addr.String(), "actions", actions)
	writeJSON(w, http.StatusOK, info)
}

// GetStrategy handles GET /api/strategy/{id}?path=.
func (s *Server) GetStrategy(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	addr, ok := s.address(w, r)
	if !ok {
		return
	}
	summary, err := tree.Strategy(addr)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     strings.TrimSpace(explorer.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) (*gametree.Tree, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return nil, false
	}
	tree, err := s.sessions.Tree(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return tree, true
}

func (s *Server) address(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	var path *string
	if err := runtime.BindQueryParameter("form", true, false, "path", r.URL.Query(), &path); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return nil, false
	}
	if path == nil {
		return domain.Root(), true
	}
	addr, err := domain.ParseAddress(*path)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return addr, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, status, code, err.Error())
}

func (s *Server) updateSessionGauge(r *http.Request) {
	if s.metrics == nil {
		return
	}
	if ids, err := s.sessions.List(r.Context()); err == nil {
		s.metrics.SetSessions(len(ids))
	}
}
