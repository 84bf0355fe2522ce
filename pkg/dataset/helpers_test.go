package dataset

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// tarEntry is one file in a test archive. A name ending in "/" is a directory.
type tarEntry struct {
	name string
	body string
	link bool
}

func buildArchive(t *testing.T, entries ...tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644}
		switch {
		case e.link:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.body
		case len(e.name) > 0 && e.name[len(e.name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := io.WriteString(tw, e.body); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// countingSource serves fixed bytes and counts Open calls.
type countingSource struct {
	data  []byte
	err   error
	opens atomic.Int32
}

func (s *countingSource) Open(context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *countingSource) String() string { return "counting" }

var errBoom = errors.New("boom")

// makeDataset creates label folders with the given number of wav files each.
func makeDataset(t *testing.T, labels map[string]int) string {
	t.Helper()
	root := t.TempDir()
	for label, n := range labels {
		dir := filepath.Join(root, label)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for i := range n {
			name := filepath.Join(dir, label+"_"+string(rune('a'+i))+".wav")
			if err := os.WriteFile(name, []byte("RIFF"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}
