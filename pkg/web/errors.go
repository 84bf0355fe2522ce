package web

import (
	"errors"
	"net/http"

	"github.com/haivivi/speechcommands/pkg/dataset"
	"github.com/haivivi/speechcommands/pkg/history"
	"github.com/haivivi/speechcommands/pkg/upload"
	"github.com/haivivi/speechcommands/pkg/waveform"
)

// Banner kinds.
const (
	bannerInfo    = "info"
	bannerSuccess = "success"
	bannerWarning = "warning"
	bannerError   = "error"
)

type banner struct {
	Kind    string
	Message string
}

// classify maps a handler error to an HTTP status and a user-facing banner.
func classify(err error) (int, banner) {
	switch {
	case errors.Is(err, upload.ErrNoFile):
		return http.StatusOK, banner{bannerInfo, NoUploadMessage}
	case errors.Is(err, upload.ErrExtension):
		return http.StatusUnsupportedMediaType, banner{bannerError, "Unsupported file type. Please upload a .wav file."}
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, banner{bannerError, "The uploaded file is too large."}
	case errors.Is(err, waveform.ErrDecode):
		return http.StatusUnprocessableEntity, banner{bannerError, "Could not decode audio: " + err.Error()}
	case errors.Is(err, dataset.ErrInsufficientLabels):
		return http.StatusInternalServerError, banner{bannerError, "Dataset preview unavailable: " + err.Error()}
	case errors.Is(err, dataset.ErrInvalidClip):
		return http.StatusNotFound, banner{bannerError, "Clip not found."}
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, banner{bannerError, "Record not found."}
	default:
		return http.StatusInternalServerError, banner{bannerError, "Something went wrong: " + err.Error()}
	}
}
