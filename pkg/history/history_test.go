package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haivivi/speechcommands/pkg/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(kv.NewMemory(nil))
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Add(ctx, Record{Filename: "yes.wav", SampleRate: 16000, Samples: 16000, Seconds: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Fatal("ID not assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not assigned")
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "yes.wav" || got.SampleRate != 16000 || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("Get = %+v, want %+v", got, rec)
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"a.wav", "b.wav", "c.wav"} {
		if _, err := s.Add(ctx, Record{Filename: name}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Filename != "c.wav" || recs[1].Filename != "b.wav" {
		t.Fatalf("Recent = %+v", recs)
	}

	all, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent(10) returned %d records, want 3", len(all))
	}

	if none, _ := s.Recent(ctx, 0); none != nil {
		t.Fatal("Recent(0) should return nil")
	}
}

func TestAddSameInstant(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(nil))
	defer s.Close()
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	first, err := s.Add(ctx, Record{Filename: "a.wav"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Add(ctx, Record{Filename: "b.wav"})
	if err != nil {
		t.Fatal(err)
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(recs))
	}
	for _, want := range []Record{first, second} {
		got, err := s.Get(ctx, want.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Filename != want.Filename {
			t.Fatalf("Get(%s).Filename = %q, want %q", want.ID, got.Filename, want.Filename)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	keep, err := s.Add(ctx, Record{Filename: "keep.wav"})
	if err != nil {
		t.Fatal(err)
	}
	drop, err := s.Add(ctx, Record{Filename: "drop.wav"})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, drop.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, drop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, drop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != keep.ID {
		t.Fatalf("Recent = %+v", recs)
	}
}

func TestRecentSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Add(ctx, Record{Filename: "ok.wav"}); err != nil {
		t.Fatal(err)
	}
	if err := s.kv.Set(ctx, recordKey(1, "bad"), []byte{0xc1}); err != nil {
		t.Fatal(err)
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Filename != "ok.wav" {
		t.Fatalf("Recent = %+v", recs)
	}
}

func TestOpenBadger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := s.Add(ctx, Record{Filename: "persist.wav"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "persist.wav" {
		t.Fatalf("Filename = %q", got.Filename)
	}
}

func TestRecordKeyOrdering(t *testing.T) {
	a := recordKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano(), "zzz")
	b := recordKey(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).UnixNano(), "aaa")
	if a.String() >= b.String() {
		t.Fatalf("keys out of order: %s >= %s", a, b)
	}
}
