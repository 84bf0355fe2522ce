package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Fetcher ensures a dataset directory exists, downloading and extracting
// the archive the first time. Ensure runs its work at most once; later calls
// return the memoized result.
type Fetcher struct {
	dir        string
	src        Source
	logger     *slog.Logger
	onProgress func(read, total int64)

	once       sync.Once
	path       string
	err        error
	downloaded bool
	stats      ExtractStats
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// WithProgress registers fn to be called with the running count of
// compressed bytes read from the source. total is the archive size when the
// source is a [Sizer], otherwise -1.
func WithProgress(fn func(read, total int64)) FetcherOption {
	return func(f *Fetcher) { f.onProgress = fn }
}

// NewFetcher creates a Fetcher that materializes src into dir.
func NewFetcher(dir string, src Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{dir: dir, src: src, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ensure returns the dataset directory, fetching it if it does not exist.
//
// An existing directory is trusted as-is: no checksum or completeness check
// is made and the source is never contacted. On failure the partially
// created directory is removed and an error wrapping ErrFetch is returned.
func (f *Fetcher) Ensure(ctx context.Context) (string, error) {
	f.once.Do(func() {
		f.path, f.err = f.ensure(ctx)
	})
	return f.path, f.err
}

// Downloaded reports whether Ensure had to fetch the archive.
func (f *Fetcher) Downloaded() bool {
	return f.downloaded
}

// Stats returns the extraction summary of the last download.
func (f *Fetcher) Stats() ExtractStats {
	return f.stats
}

func (f *Fetcher) ensure(ctx context.Context) (string, error) {
	info, err := os.Stat(f.dir)
	switch {
	case err == nil && info.IsDir():
		f.logger.Debug("dataset present, skipping download", "dir", f.dir)
		return f.dir, nil
	case err == nil:
		return "", fmt.Errorf("%w: %s exists and is not a directory", ErrFetch, f.dir)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}

	start := time.Now()
	f.logger.Info("downloading dataset (only first time)", "source", f.src.String(), "dir", f.dir)

	stats, err := f.download(ctx)
	if err != nil {
		if rmErr := os.RemoveAll(f.dir); rmErr != nil {
			f.logger.Error("failed to remove partial dataset", "dir", f.dir, "error", rmErr)
		}
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}

	f.downloaded = true
	f.stats = stats
	f.logger.Info("dataset downloaded and extracted",
		"dir", f.dir,
		"files", stats.Files,
		"bytes", stats.Bytes,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return f.dir, nil
}

func (f *Fetcher) download(ctx context.Context) (ExtractStats, error) {
	rc, err := f.src.Open(ctx)
	if err != nil {
		return ExtractStats{}, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if f.onProgress != nil {
		r = &progressReader{r: rc, fn: f.onProgress, total: f.size(ctx)}
	}
	stats, err := Extract(ctx, r, f.dir)
	if err != nil {
		return stats, err
	}
	_, err = io.Copy(io.Discard, r)
	return stats, err
}

// size returns the archive size, or -1 when the source cannot tell.
func (f *Fetcher) size(ctx context.Context) int64 {
	s, ok := f.src.(Sizer)
	if !ok {
		return -1
	}
	n, err := s.Size(ctx)
	if err != nil {
		f.logger.Debug("archive size unavailable", "source", f.src.String(), "error", err)
		return -1
	}
	return n
}

// progressReader reports the cumulative number of bytes read.
type progressReader struct {
	r     io.Reader
	fn    func(read, total int64)
	total int64
	read  atomic.Int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.fn(p.read.Add(int64(n)), p.total)
	}
	return n, err
}
