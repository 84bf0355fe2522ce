package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/haivivi/speechcommands/pkg/dataset"
	"github.com/haivivi/speechcommands/pkg/history"
	"github.com/haivivi/speechcommands/pkg/inspect"
	"github.com/haivivi/speechcommands/pkg/upload"
	"github.com/haivivi/speechcommands/pkg/waveform"
)

// uploadField is the multipart field carrying the uploaded file.
const uploadField = "audio"

type pageData struct {
	Title  string
	Header string

	Samples       []dataset.Sample
	Labels        string
	PreviewBanner *banner

	Banner   *banner
	Report   *inspect.Report
	AudioURI template.URL
	PlotURI  template.URL
}

// uploadResult is an inspected upload with its rendered media.
type uploadResult struct {
	report *inspect.Report
	audio  []byte
	plot   []byte
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.newPage()
	_, b := classify(upload.ErrNoFile)
	data.Banner = &b
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data := s.newPage()
	res, err := s.receive(r, true)
	if err != nil {
		status, b := classify(err)
		if status >= http.StatusInternalServerError {
			slog.Error("upload failed", "error", err)
		}
		data.Banner = &b
		s.render(w, status, data)
		return
	}

	data.Banner = &banner{bannerSuccess, UploadedMessage}
	data.Report = res.report
	data.AudioURI = dataURI("audio/wav", res.audio)
	data.PlotURI = dataURI("image/png", res.plot)
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	path, err := s.picker.ClipPath(r.PathValue("label"), r.PathValue("file"))
	if err != nil {
		status, _ := classify(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := s.picker.Pick()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	res, err := s.receive(r, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Record{})
		return
	}
	recs, err := s.history.Recent(r.Context(), s.historyLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, history.ErrNotFound)
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, history.ErrNotFound)
		return
	}
	if err := s.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// newPage builds the dataset preview part of the page.
func (s *Server) newPage() *pageData {
	data := &pageData{Title: PageTitle, Header: PageHeader}
	samples, err := s.picker.Pick()
	if err != nil {
		slog.Warn("dataset preview failed", "root", s.picker.Root(), "error", err)
		_, b := classify(err)
		data.PreviewBanner = &b
		return data
	}
	labels := make([]string, len(samples))
	for i, smp := range samples {
		labels[i] = smp.Label
	}
	data.Samples = samples
	data.Labels = strings.Join(labels, ", ")
	return data
}

// receive stages the uploaded file and inspects it. The waveform plot and
// the raw bytes are only produced when media is true.
func (s *Server) receive(r *http.Request, media bool) (*uploadResult, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", upload.ErrNoFile, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, upload.ErrNoFile
		}
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}
		defer part.Close()

		name := part.FileName()
		res := &uploadResult{}
		err = s.uploads.With(r.Context(), name, part, func(path string) error {
			rep, err := s.inspector.File(r.Context(), name, path)
			if err != nil {
				return err
			}
			res.report = rep
			if !media {
				return nil
			}
			if res.audio, err = os.ReadFile(path); err != nil {
				return err
			}
			if res.plot, err = waveform.NewFigure(rep.Clip).PNG(); err != nil {
				return fmt.Errorf("render waveform: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slog.Info("upload inspected", "file", name, "summary", res.report.Summary)
		return res, nil
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.Error("failed to render page", "error", err)
	}
}

// writeError reports err as JSON. A missing upload is a client error here,
// unlike on the page where it only prompts for a file.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, b := classify(err)
	if errors.Is(err, upload.ErrNoFile) {
		status, b = http.StatusBadRequest, banner{bannerError, NoUploadMessage}
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{b.Kind: b.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
