package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSkipsExistingDir(t *testing.T) {
	dir := t.TempDir()
	src := &countingSource{data: buildArchive(t, tarEntry{name: "yes/a.wav", body: "x"})}

	f := NewFetcher(dir, src)
	got, err := f.Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Fatalf("Ensure = %q, want %q", got, dir)
	}
	if n := src.opens.Load(); n != 0 {
		t.Fatalf("source opened %d times, want 0", n)
	}
	if f.Downloaded() {
		t.Fatal("Downloaded() = true for existing dir")
	}
	if _, err := os.Stat(filepath.Join(dir, "yes")); !os.IsNotExist(err) {
		t.Fatal("extraction ran for existing dir")
	}
}

func TestEnsureDownloadsOverHTTP(t *testing.T) {
	archive := buildArchive(t,
		tarEntry{name: "./"},
		tarEntry{name: "./yes/"},
		tarEntry{name: "./yes/a.wav", body: "aaaa"},
		tarEntry{name: "./_background_noise_/noise.wav", body: "nn"},
		tarEntry{name: "./LICENSE", body: "cc-by"},
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "data")
	var progress, total int64
	f := NewFetcher(dir, &HTTPSource{URL: srv.URL}, WithProgress(func(n, size int64) { progress, total = n, size }))

	got, err := f.Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Fatalf("Ensure = %q, want %q", got, dir)
	}
	data, err := os.ReadFile(filepath.Join(dir, "yes", "a.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "aaaa" {
		t.Fatalf("a.wav = %q", data)
	}
	if !f.Downloaded() {
		t.Fatal("Downloaded() = false after fetch")
	}
	if s := f.Stats(); s.Files != 3 || s.Bytes != 11 {
		t.Fatalf("Stats = %+v, want 3 files / 11 bytes", s)
	}
	if progress != int64(len(archive)) {
		t.Fatalf("progress = %d, want %d", progress, len(archive))
	}
	if total != -1 {
		t.Fatalf("total = %d, want -1 for an HTTP source", total)
	}
}

func TestEnsureRunsOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	src := &countingSource{data: buildArchive(t, tarEntry{name: "yes/a.wav", body: "x"})}
	f := NewFetcher(dir, src)

	for range 3 {
		if _, err := f.Ensure(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := src.opens.Load(); n != 1 {
		t.Fatalf("source opened %d times, want 1", n)
	}
}

func TestEnsureFailuresRemovePartialDir(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		is   error
	}{
		{"open error", &countingSource{err: errBoom}, errBoom},
		{"not gzip", &countingSource{data: []byte("definitely not an archive")}, nil},
		{"unsafe path", &countingSource{data: buildArchive(t,
			tarEntry{name: "yes/a.wav", body: "x"},
			tarEntry{name: "../escape.wav", body: "x"},
		)}, ErrUnsafePath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "data")
			_, err := NewFetcher(dir, tt.src).Ensure(context.Background())
			if !errors.Is(err, ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
			if _, err := os.Stat(dir); !os.IsNotExist(err) {
				t.Fatalf("partial dir left behind: %v", err)
			}
		})
	}
}

func TestEnsureHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "data")
	_, err := NewFetcher(dir, &HTTPSource{URL: srv.URL}).Ensure(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("partial dir left behind")
	}
}

func TestEnsureCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := filepath.Join(t.TempDir(), "data")
	src := &countingSource{data: buildArchive(t, tarEntry{name: "yes/a.wav", body: "x"})}
	_, err := NewFetcher(dir, src).Ensure(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnsureRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFetcher(path, &countingSource{}).Ensure(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestExtractSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	archive := buildArchive(t,
		tarEntry{name: "yes/a.wav", body: "x"},
		tarEntry{name: "yes/link.wav", body: "/etc/passwd", link: true},
	)
	src := &countingSource{data: archive}
	rc, _ := src.Open(context.Background())
	stats, err := Extract(context.Background(), rc, dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Files != 1 {
		t.Fatalf("Files = %d, want 1", stats.Files)
	}
	if _, err := os.Lstat(filepath.Join(dir, "yes", "link.wav")); !os.IsNotExist(err) {
		t.Fatal("symlink was extracted")
	}
}
