// Package upload stages user-supplied audio on disk for decoding.
//
// Uploaded bytes are written to a temporary file that lives exactly as long
// as the callback passed to [Handler.With]; the file is removed on every
// exit path.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoFile means nothing was uploaded. It is informational, not a
	// failure of the pipeline.
	ErrNoFile = errors.New("upload: no file")

	// ErrExtension is returned for files without the accepted extension.
	ErrExtension = errors.New("upload: unsupported file type")

	// ErrTooLarge is returned when the upload exceeds Handler.MaxBytes.
	ErrTooLarge = errors.New("upload: file too large")
)

// DefaultExtension is the only accepted upload type.
const DefaultExtension = ".wav"

// Handler persists uploads to temporary files.
type Handler struct {
	// Dir is where temporary files are created. Defaults to os.TempDir().
	Dir string

	// Extension is the accepted file extension. Defaults to ".wav".
	Extension string

	// MaxBytes caps the upload size. Zero means unlimited.
	MaxBytes int64
}

func (h *Handler) extension() string {
	if h.Extension == "" {
		return DefaultExtension
	}
	return h.Extension
}

// Check validates the uploaded file name.
func (h *Handler) Check(filename string) error {
	if filename == "" {
		return ErrNoFile
	}
	if !strings.EqualFold(filepath.Ext(filename), h.extension()) {
		return fmt.Errorf("%w: %q (want %s)", ErrExtension, filename, h.extension())
	}
	return nil
}

// With writes r to a new temporary file and calls fn with its path. The
// file is deleted when With returns, including when fn fails or panics.
func (h *Handler) With(ctx context.Context, filename string, r io.Reader, fn func(path string) error) error {
	if err := h.Check(filename); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(h.Dir, "speechcommands-*"+h.extension())
	if err != nil {
		return fmt.Errorf("upload: create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove upload temp file", "path", path, "error", err)
		}
	}()

	n, err := h.copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	slog.Debug("upload staged", "file", filename, "path", path, "bytes", n)

	return fn(path)
}

func (h *Handler) copy(w io.Writer, r io.Reader) (int64, error) {
	if h.MaxBytes <= 0 {
		n, err := io.Copy(w, r)
		if err != nil {
			return n, fmt.Errorf("upload: write temp file: %w", err)
		}
		return n, nil
	}
	n, err := io.Copy(w, io.LimitReader(r, h.MaxBytes+1))
	if err != nil {
		return n, fmt.Errorf("upload: write temp file: %w", err)
	}
	if n > h.MaxBytes {
		return n, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, h.MaxBytes)
	}
	return n, nil
}
