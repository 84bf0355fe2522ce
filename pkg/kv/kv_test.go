package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/haivivi/speechcommands/pkg/kv"
)

// backends returns each Store implementation under test.
func backends(t *testing.T) map[string]kv.Store {
	t.Helper()
	b, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	disk, err := kv.NewBadger(kv.BadgerOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewBadger on disk: %v", err)
	}
	stores := map[string]kv.Store{
		"memory":      kv.NewMemory(nil),
		"badger-mem":  b,
		"badger-disk": disk,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestGetSetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := kv.Key{"insp", "20261016", "1"}

			if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, key, []byte("hello")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "hello" {
				t.Fatalf("Get = %q, want %q", got, "hello")
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete missing key: %v", err)
			}
		})
	}
}

func TestListPrefix(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, k := range []kv.Key{
				{"a", "b", "2"},
				{"a", "b", "1"},
				{"a", "bc", "1"},
				{"z", "1"},
			} {
				if err := s.Set(ctx, k, []byte(k.String())); err != nil {
					t.Fatal(err)
				}
			}

			var got []string
			for e, err := range s.List(ctx, kv.Key{"a", "b"}) {
				if err != nil {
					t.Fatal(err)
				}
				got = append(got, e.Key.String())
			}
			want := []string{"a:b:1", "a:b:2"}
			if !slices.Equal(got, want) {
				t.Fatalf("List = %v, want %v", got, want)
			}

			n := 0
			for range s.List(ctx, nil) {
				n++
			}
			if n != 4 {
				t.Fatalf("List(nil) returned %d entries, want 4", n)
			}
		})
	}
}

func TestCustomSeparator(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory(&kv.Options{Separator: '/'})
	if err := s.Set(ctx, kv.Key{"x", "y"}, []byte("v")); err != nil {
		t.Fatal(err)
	}
	for e, err := range s.List(ctx, kv.Key{"x"}) {
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(e.Key, kv.Key{"x", "y"}) {
			t.Fatalf("key = %v", e.Key)
		}
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory(nil)
	val := []byte("abc")
	s.Set(ctx, kv.Key{"k"}, val)
	val[0] = 'X'

	got, _ := s.Get(ctx, kv.Key{"k"})
	if string(got) != "abc" {
		t.Fatalf("stored value mutated: %q", got)
	}
	got[0] = 'Y'
	again, _ := s.Get(ctx, kv.Key{"k"})
	if string(again) != "abc" {
		t.Fatalf("returned value aliases store: %q", again)
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := kv.NewBadger(kv.BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}
