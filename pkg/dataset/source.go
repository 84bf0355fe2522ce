package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/haivivi/speechcommands/pkg/storage"
)

// Source produces the compressed dataset archive.
type Source interface {
	// Open returns a stream of the gzip-compressed tar archive.
	Open(ctx context.Context) (io.ReadCloser, error)

	// String describes the source for logs.
	String() string
}

// Sizer is implemented by sources that know the archive size before
// reading it.
type Sizer interface {
	Size(ctx context.Context) (int64, error)
}

// HTTPSource downloads the archive with a single GET request.
type HTTPSource struct {
	URL string

	// Client is the HTTP client to use. Defaults to http.DefaultClient.
	Client *http.Client
}

// Open issues the GET request. Any status other than 200 is an error.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// StoreSource reads a mirrored archive from a storage backend.
type StoreSource struct {
	Store storage.Reader
	Path  string

	// Name is used by String. Defaults to Path.
	Name string
}

// Open opens the archive in the backing store.
func (s *StoreSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.Store.Open(ctx, s.Path)
}

// Size returns the archive size reported by the backing store.
func (s *StoreSource) Size(ctx context.Context) (int64, error) {
	return s.Store.Size(ctx, s.Path)
}

func (s *StoreSource) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// SourceOptions configures [ParseSource].
type SourceOptions struct {
	// HTTPClient is used for http(s) sources.
	HTTPClient *http.Client

	// S3 configures the client for s3:// sources.
	S3 storage.S3Options
}

// ParseSource builds a Source from a URI:
//
//	https://host/path.tar.gz   HTTPSource
//	s3://bucket/key.tar.gz     StoreSource over S3
//	file:///abs/path.tar.gz    StoreSource over the local disk
//	./path.tar.gz              StoreSource over the local disk
//
// An empty URI selects [DefaultURL].
func ParseSource(uri string, opts SourceOptions) (Source, error) {
	if uri == "" {
		uri = DefaultURL
	}
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return &HTTPSource{URL: uri, Client: opts.HTTPClient}, nil

	case strings.HasPrefix(uri, "s3://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("dataset: parse source %q: %w", uri, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("dataset: source %q must be s3://bucket/key", uri)
		}
		return &StoreSource{
			Store: storage.NewS3(storage.NewS3Client(opts.S3), u.Host, ""),
			Path:  key,
			Name:  uri,
		}, nil
	}

	path := strings.TrimPrefix(uri, "file://")
	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("dataset: unsupported source scheme in %q", uri)
	}
	local, err := storage.NewLocal(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("dataset: source %q: %w", uri, err)
	}
	return &StoreSource{
		Store: local,
		Path:  filepath.Base(path),
		Name:  path,
	}, nil
}
