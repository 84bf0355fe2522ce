package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/haivivi/speechcommands/cmd/speechcommands/internal/config"
	"github.com/haivivi/speechcommands/pkg/cli"
	"github.com/haivivi/speechcommands/pkg/dataset"
	"github.com/haivivi/speechcommands/pkg/history"
	"github.com/haivivi/speechcommands/pkg/storage"
)

// progressStep is how often download progress is logged.
const progressStep = 64 << 20

// newFetcher builds a dataset fetcher from the configuration.
func newFetcher(cfg *config.Config) (*dataset.Fetcher, error) {
	src, err := dataset.ParseSource(cfg.Dataset.Source, dataset.SourceOptions{
		S3: storage.S3Options{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		},
	})
	if err != nil {
		return nil, err
	}

	var next atomic.Int64
	next.Store(progressStep)
	progress := func(read, total int64) {
		if n := next.Load(); read >= n && next.CompareAndSwap(n, n+progressStep) {
			slog.Info("downloading dataset", progressAttrs(read, total)...)
		}
	}
	return dataset.NewFetcher(cfg.Dataset.Dir, src,
		dataset.WithLogger(slog.Default()),
		dataset.WithProgress(progress),
	), nil
}

// progressAttrs describes download progress, with a percentage when the
// archive size is known.
func progressAttrs(read, total int64) []any {
	attrs := []any{"read", cli.FormatBytes(read)}
	if total > 0 {
		attrs = append(attrs,
			"total", cli.FormatBytes(total),
			"percent", fmt.Sprintf("%.1f%%", float64(read)*100/float64(total)))
	}
	return attrs
}

// ensureDataset runs the one-time setup phase: fetch the dataset if its
// directory is missing.
func ensureDataset(ctx context.Context, cfg *config.Config) (*dataset.Fetcher, error) {
	f, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.DownloadTimeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if _, err := f.Ensure(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// newPicker builds a picker over the configured dataset directory.
func newPicker(cfg *config.Config, opts ...dataset.PickerOption) *dataset.Picker {
	opts = append([]dataset.PickerOption{dataset.WithCount(cfg.Dataset.Count)}, opts...)
	return dataset.NewPicker(cfg.Dataset.Dir, opts...)
}

// openHistory opens the configured inspection log.
func openHistory(cfg *config.Config) (*history.Store, error) {
	return history.Open(cfg.History.Dir)
}
