package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/dandelion"
	"github.com/nao1215/entityscan/internal/input"
	"github.com/nao1215/entityscan/internal/model"
	"github.com/nao1215/entityscan/internal/report"
)

//go:embed templates/index.html
var templateFS embed.FS

// Messages shown by the form.
const (
	EmptyTextMessage = "Please enter some text first."
	NoTokenMessage   = "No Dandelion API token is configured."
)

// Default server settings.
const (
	DefaultMaxFormSize     = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

// Extractor runs one extraction. A nil Extractor means no token is configured.
type Extractor interface {
	Run(ctx context.Context, in input.Input) (*model.Extraction, error)
}

// Server serves the browser form and the JSON API.
type Server struct {
	extractor       Extractor
	logger          *slog.Logger
	tmpl            *template.Template
	maxFormSize     int64
	shutdownTimeout time.Duration
	mux             *http.ServeMux
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

// WithMaxFormSize limits the request body size.
func WithMaxFormSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFormSize = n
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer creates a Server. extractor may be nil when no token is configured;
// the form then shows a warning and refuses to extract.
func NewServer(extractor Extractor, opts ...Option) *Server {
	s := &Server{
		extractor:       extractor,
		logger:          slog.Default(),
		tmpl:            template.Must(template.ParseFS(templateFS, "templates/index.html")),
		maxFormSize:     DefaultMaxFormSize,
		shutdownTimeout: DefaultShutdownTimeout,
		mux:             http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.HandleFunc("POST /api/extract", s.handleAPIExtract)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving entity extraction form", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// pageData is the template input.
type pageData struct {
	TokenConfigured bool
	Text            string
	Error           string
	Result          *model.Extraction
	FoundMessage    string
	EmptyMessage    string
}

func (s *Server) newPage() pageData {
	return pageData{
		TokenConfigured: s.extractor != nil,
		EmptyMessage:    report.NoEntitiesMessage,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.newPage())
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxFormSize)
	page := s.newPage()

	if err := r.ParseForm(); err != nil {
		page.Error = "Request failed: " + err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}
	page.Text = r.PostFormValue("text")

	if s.extractor == nil {
		page.Error = NoTokenMessage
		s.render(w, http.StatusServiceUnavailable, page)
		return
	}
	if strings.TrimSpace(page.Text) == "" {
		page.Error = EmptyTextMessage
		s.render(w, http.StatusBadRequest, page)
		return
	}

	e, err := s.extract(r.Context(), page.Text)
	if err != nil {
		page.Error = ErrorMessage(err)
		s.render(w, http.StatusBadGateway, page)
		return
	}

	page.Result = e
	page.FoundMessage = report.FoundMessage(len(e.Rows))
	s.render(w, http.StatusOK, page)
}

// apiRequest is the JSON body of POST /api/extract.
type apiRequest struct {
	Text string `json:"text"`
}

// apiResponse is the JSON answer of POST /api/extract.
type apiResponse struct {
	Message string           `json:"message,omitempty"`
	Rows    []annotation.Row `json:"rows"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) handleAPIExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxFormSize)

	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiResponse{Rows: []annotation.Row{}, Error: "invalid JSON body: " + err.Error()})
		return
	}
	if s.extractor == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, apiResponse{Rows: []annotation.Row{}, Error: NoTokenMessage})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeJSON(w, http.StatusBadRequest, apiResponse{Rows: []annotation.Row{}, Error: EmptyTextMessage})
		return
	}

	e, err := s.extract(r.Context(), req.Text)
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, apiResponse{Rows: []annotation.Row{}, Error: ErrorMessage(err)})
		return
	}

	msg := report.NoEntitiesMessage
	if !e.IsEmpty() {
		msg = report.FoundMessage(len(e.Rows))
	}
	s.writeJSON(w, http.StatusOK, apiResponse{Message: msg, Rows: e.Rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) extract(ctx context.Context, text string) (*model.Extraction, error) {
	in := input.Input{
		Text:   text,
		Source: model.Source{Kind: model.SourceWeb},
	}
	e, err := s.extractor.Run(ctx, in)
	if err != nil {
		s.logger.Warn("extraction failed", "error", err)
		return nil, err
	}
	s.logger.Info("extraction finished", "entities", len(e.Rows), "lang", e.Lang)
	return e, nil
}

func (s *Server) render(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.Execute(w, page); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// ErrorMessage formats an extraction error for display.
// API errors show the status and raw body; everything else is a failed request.
func ErrorMessage(err error) string {
	var apiErr *dandelion.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Dandelion API error %d: %s", apiErr.StatusCode, apiErr.Body)
	}
	return "Request failed: " + err.Error()
}
