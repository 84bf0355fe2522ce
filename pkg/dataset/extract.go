package dataset

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// ExtractStats summarizes an extraction.
type ExtractStats struct {
	Files int   `json:"files" yaml:"files"`
	Dirs  int   `json:"dirs" yaml:"dirs"`
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// Extract unpacks a gzip-compressed tar stream into dir.
//
// Entry names must be local to dir; anything else fails with ErrUnsafePath.
// Symlinks, devices and other special entries are skipped.
func Extract(ctx context.Context, r io.Reader, dir string) (ExtractStats, error) {
	var stats ExtractStats

	zr, err := gzip.NewReader(r)
	if err != nil {
		return stats, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			// Read through the gzip trailer so its checksum is verified.
			if _, err := io.Copy(io.Discard, zr); err != nil {
				return stats, fmt.Errorf("read gzip: %w", err)
			}
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read tar: %w", err)
		}
		if !filepath.IsLocal(filepath.FromSlash(hdr.Name)) {
			return stats, fmt.Errorf("%w: %q", ErrUnsafePath, hdr.Name)
		}
		target := filepath.Join(dir, filepath.FromSlash(hdr.Name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return stats, err
			}
			stats.Dirs++
		case tar.TypeReg:
			n, err := writeFile(target, tr)
			if err != nil {
				return stats, fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			stats.Files++
			stats.Bytes += n
		default:
			slog.Debug("skipping archive entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

func writeFile(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
