package upload

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWithPersistsBytes(t *testing.T) {
	h := &Handler{Dir: t.TempDir()}

	var seen string
	err := h.With(context.Background(), "clip.wav", strings.NewReader("RIFF-data"), func(path string) error {
		seen = path
		if !strings.HasSuffix(path, ".wav") {
			t.Errorf("temp file %q lacks .wav suffix", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if string(data) != "RIFF-data" {
			t.Errorf("temp file = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("temp file %s not removed after success", seen)
	}
}

func TestWithRemovesOnFailure(t *testing.T) {
	h := &Handler{Dir: t.TempDir()}
	errDecode := errors.New("decode failed")

	var seen string
	err := h.With(context.Background(), "clip.WAV", strings.NewReader("junk"), func(path string) error {
		seen = path
		return errDecode
	})
	if !errors.Is(err, errDecode) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatal("temp file not removed after failure")
	}
}

func TestWithRemovesOnPanic(t *testing.T) {
	dir := t.TempDir()
	h := &Handler{Dir: dir}

	func() {
		defer func() { recover() }()
		h.With(context.Background(), "clip.wav", strings.NewReader("x"), func(string) error {
			panic("boom")
		})
	}()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not empty after panic: %v", entries)
	}
}

func TestCheck(t *testing.T) {
	h := &Handler{}
	tests := []struct {
		name string
		want error
	}{
		{"", ErrNoFile},
		{"clip.mp3", ErrExtension},
		{"clip", ErrExtension},
		{"clip.wav", nil},
		{"CLIP.Wav", nil},
	}
	for _, tt := range tests {
		err := h.Check(tt.name)
		if !errors.Is(err, tt.want) {
			t.Errorf("Check(%q) = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestWithRejectsExtensionBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	h := &Handler{Dir: dir}

	called := false
	err := h.With(context.Background(), "song.mp3", strings.NewReader("x"), func(string) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrExtension) {
		t.Fatalf("expected ErrExtension, got %v", err)
	}
	if called {
		t.Fatal("callback ran for rejected file")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatal("temp file created for rejected upload")
	}
}

func TestWithMaxBytes(t *testing.T) {
	dir := t.TempDir()
	h := &Handler{Dir: dir, MaxBytes: 4}

	err := h.With(context.Background(), "clip.wav", strings.NewReader("12345"), func(string) error {
		t.Fatal("callback ran for oversized upload")
		return nil
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatal("oversized temp file not removed")
	}

	if err := h.With(context.Background(), "clip.wav", strings.NewReader("1234"), func(string) error { return nil }); err != nil {
		t.Fatalf("upload at the limit failed: %v", err)
	}
}

func TestWithCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &Handler{Dir: t.TempDir()}
	err := h.With(ctx, "clip.wav", strings.NewReader("x"), func(string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
