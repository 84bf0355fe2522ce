// Package web serves the Speech Commands explorer page and its JSON API.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/haivivi/speechcommands/pkg/dataset"
	"github.com/haivivi/speechcommands/pkg/history"
	"github.com/haivivi/speechcommands/pkg/inspect"
	"github.com/haivivi/speechcommands/pkg/upload"
)

//go:embed templates/*
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page text.
const (
	PageTitle       = "Google Speech Commands Explorer"
	PageHeader      = "Google Speech Commands App"
	NoUploadMessage = "Please upload an audio file to get started."
	UploadedMessage = "Audio uploaded successfully!"
)

// DefaultHistoryLimit is the number of records returned by /api/history.
const DefaultHistoryLimit = 20

// Config holds the server dependencies.
type Config struct {
	// Picker selects dataset previews. Required.
	Picker *dataset.Picker

	// Uploads stages uploaded files. Defaults to an unlimited .wav handler.
	Uploads *upload.Handler

	// Inspector analyzes uploads. Defaults to a stub predictor without history.
	Inspector *inspect.Inspector

	// History backs /api/history. Optional.
	History *history.Store

	// HistoryLimit caps /api/history results. Defaults to DefaultHistoryLimit.
	HistoryLimit int
}

// Server is the explorer HTTP handler.
type Server struct {
	picker       *dataset.Picker
	uploads      *upload.Handler
	inspector    *inspect.Inspector
	history      *history.Store
	historyLimit int

	mux *http.ServeMux
}

// New creates a Server and registers its routes.
func New(cfg Config) *Server {
	s := &Server{
		picker:       cfg.Picker,
		uploads:      cfg.Uploads,
		inspector:    cfg.Inspector,
		history:      cfg.History,
		historyLimit: cfg.HistoryLimit,
		mux:          http.NewServeMux(),
	}
	if s.uploads == nil {
		s.uploads = &upload.Handler{}
	}
	if s.inspector == nil {
		s.inspector = &inspect.Inspector{History: cfg.History}
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("GET /audio/{label}/{file}", s.handleAudio)
	s.mux.HandleFunc("GET /api/samples", s.handleSamples)
	s.mux.HandleFunc("POST /api/inspect", s.handleInspect)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/history/{id}", s.handleRecord)
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteRecord)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rw, r)
	slog.Debug("http request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rw.status,
		"duration", time.Since(start),
	)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
