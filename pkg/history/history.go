// Package history keeps a log of inspected uploads.
//
// Records are msgpack-encoded in a [kv.Store] under time-ordered keys:
//
//	insp:{YYYYMMDD}:{ts_ns}:{id}  → msgpack-encoded Record
//	inspid:{id}                   → ts_ns (reverse index)
//
// Lexicographic key order matches chronological order. The id segment keeps
// records written in the same nanosecond apart.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/speechcommands/pkg/kv"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history: record not found")

// Record describes one inspected upload.
type Record struct {
	ID         string    `json:"id" yaml:"id" msgpack:"id"`
	Filename   string    `json:"filename" yaml:"filename" msgpack:"filename"`
	SampleRate int       `json:"sample_rate" yaml:"sample_rate" msgpack:"sample_rate"`
	Samples    int       `json:"samples" yaml:"samples" msgpack:"samples"`
	Channels   int       `json:"channels" yaml:"channels" msgpack:"channels"`
	Seconds    float64   `json:"seconds" yaml:"seconds" msgpack:"seconds"`
	Peak       float32   `json:"peak" yaml:"peak" msgpack:"peak"`
	Frames     int       `json:"frames" yaml:"frames" msgpack:"frames"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at"`
}

// Store is the inspection log.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// New wraps a kv.Store.
func New(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

// Open opens a history store. An empty dir keeps records in memory only.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return New(kv.NewMemory(nil)), nil
	}
	b, err := kv.NewBadger(kv.BadgerOptions{Dir: dir, Logger: slog.Default()})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dir, err)
	}
	return New(b), nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.kv.Close()
}

// Add stores rec, assigning its ID and CreatedAt.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()

	data, err := msgpack.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("history: encode: %w", err)
	}
	ts := rec.CreatedAt.UnixNano()
	if err := s.kv.Set(ctx, recordKey(ts, rec.ID), data); err != nil {
		return Record{}, err
	}
	if err := s.kv.Set(ctx, idKey(rec.ID), []byte(strconv.FormatInt(ts, 10))); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	key, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("history: decode %s: %w", id, err)
	}
	return &rec, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return err
	}
	return s.kv.Delete(ctx, idKey(id))
}

// lookup resolves id to its record key through the reverse index.
func (s *Store) lookup(ctx context.Context, id string) (kv.Key, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	raw, err := s.kv.Get(ctx, idKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("history: corrupt index for %s: %w", id, err)
	}
	return recordKey(ts, id), nil
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	var all []Record
	for entry, err := range s.kv.List(ctx, kv.Key{recordPrefix}) {
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := msgpack.Unmarshal(entry.Value, &rec); err != nil {
			slog.Warn("skipping malformed history record", "key", entry.Key.String(), "error", err)
			continue
		}
		all = append(all, rec)
	}

	// KV list is ascending; newest last.
	out := make([]Record, 0, min(n, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

const (
	recordPrefix = "insp"
	idPrefix     = "inspid"
)

func recordKey(ts int64, id string) kv.Key {
	date := time.Unix(0, ts).UTC().Format("20060102")
	return kv.Key{recordPrefix, date, fmt.Sprintf("%020d", ts), id}
}

func idKey(id string) kv.Key {
	return kv.Key{idPrefix, id}
}
