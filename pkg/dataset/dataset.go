// Package dataset manages the local copy of the Speech Commands dataset.
//
// A [Fetcher] makes sure the dataset directory exists, downloading and
// extracting the archive exactly once per process. A [Picker] draws random
// labeled clips from the extracted tree for preview.
//
// Layout of the extracted tree:
//
//	speech_commands_data/
//	├── _background_noise_/   # reserved, never sampled
//	├── yes/
//	│   ├── 0a7c2a8d_nohash_0.wav
//	│   └── ...
//	├── no/
//	└── ...
package dataset

import "errors"

const (
	// DefaultURL is the canonical location of the Speech Commands v0.02 archive.
	DefaultURL = "https://storage.googleapis.com/download.tensorflow.org/data/speech_commands_v0.02.tar.gz"

	// DefaultDir is the directory the archive is extracted into.
	DefaultDir = "speech_commands_data"

	// DefaultCount is the number of labels previewed per page load.
	DefaultCount = 5

	// ReservedPrefix marks folders that hold background noise rather than
	// spoken words.
	ReservedPrefix = "_"

	// Extension is the audio file extension of dataset clips.
	Extension = ".wav"
)

var (
	// ErrFetch wraps every failure to download or extract the archive.
	ErrFetch = errors.New("dataset: fetch failed")

	// ErrInsufficientLabels is returned by Pick when the dataset has fewer
	// labels than requested.
	ErrInsufficientLabels = errors.New("dataset: not enough labels")

	// ErrUnsafePath is returned when an archive entry would be written
	// outside the target directory.
	ErrUnsafePath = errors.New("dataset: unsafe archive path")

	// ErrInvalidClip is returned by ClipPath for names that do not identify
	// a clip inside a sampleable label folder.
	ErrInvalidClip = errors.New("dataset: invalid clip")
)
