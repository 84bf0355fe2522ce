package dataset

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Sample is one previewed clip.
type Sample struct {
	Label string `json:"label" yaml:"label"`
	File  string `json:"file" yaml:"file"`
	Path  string `json:"path" yaml:"path"`
}

// Picker draws random labeled clips from an extracted dataset.
// It is safe for concurrent use.
type Picker struct {
	root           string
	count          int
	reservedPrefix string
	extension      string

	mu  sync.Mutex
	rng *rand.Rand
}

// PickerOption configures a Picker.
type PickerOption func(*Picker)

// WithCount sets how many labels Pick draws. Values below 1 are ignored.
func WithCount(n int) PickerOption {
	return func(p *Picker) {
		if n > 0 {
			p.count = n
		}
	}
}

// WithSeed makes the picker deterministic.
func WithSeed(seed uint64) PickerOption {
	return func(p *Picker) { p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithReservedPrefix overrides the prefix of excluded folders.
func WithReservedPrefix(prefix string) PickerOption {
	return func(p *Picker) { p.reservedPrefix = prefix }
}

// WithExtension overrides the clip file extension (including the dot).
func WithExtension(ext string) PickerOption {
	return func(p *Picker) { p.extension = ext }
}

// NewPicker creates a Picker over the dataset rooted at root.
func NewPicker(root string, opts ...PickerOption) *Picker {
	now := uint64(time.Now().UnixNano())
	p := &Picker{
		root:           root,
		count:          DefaultCount,
		reservedPrefix: ReservedPrefix,
		extension:      Extension,
		rng:            rand.New(rand.NewPCG(now, now>>17)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Root returns the dataset root directory.
func (p *Picker) Root() string {
	return p.root
}

// Count returns the number of labels drawn per Pick.
func (p *Picker) Count() int {
	return p.count
}

// Labels lists the sampleable label folders, sorted by name.
func (p *Picker) Labels() ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("dataset: list labels: %w", err)
	}
	var labels []string
	for _, e := range entries {
		if !e.IsDir() || p.reserved(e.Name()) {
			continue
		}
		labels = append(labels, e.Name())
	}
	return labels, nil
}

// Pick chooses Count distinct labels uniformly at random and one clip from
// each. Labels without clips are skipped, so fewer than Count samples may be
// returned. Fails with ErrInsufficientLabels if fewer than Count labels
// exist.
func (p *Picker) Pick() ([]Sample, error) {
	labels, err := p.Labels()
	if err != nil {
		return nil, err
	}
	if len(labels) < p.count {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientLabels, len(labels), p.count)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	perm := p.rng.Perm(len(labels))[:p.count]
	samples := make([]Sample, 0, p.count)
	for _, i := range perm {
		label := labels[i]
		files, err := p.clips(label)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		file := files[p.rng.IntN(len(files))]
		samples = append(samples, Sample{
			Label: label,
			File:  file,
			Path:  filepath.Join(p.root, label, file),
		})
	}
	return samples, nil
}

// ClipPath resolves label/file to a path inside the dataset. Both parts must
// be single path elements, the label must be sampleable and the file must
// carry the clip extension.
func (p *Picker) ClipPath(label, file string) (string, error) {
	for _, part := range []string{label, file} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidClip, part)
		}
	}
	if p.reserved(label) || !p.hasExtension(file) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidClip, label, file)
	}
	path := filepath.Join(p.root, label, file)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidClip, label, file)
	}
	return path, nil
}

func (p *Picker) clips(label string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, label))
	if err != nil {
		return nil, fmt.Errorf("dataset: list %s: %w", label, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && p.hasExtension(e.Name()) {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

func (p *Picker) reserved(name string) bool {
	return p.reservedPrefix != "" && strings.HasPrefix(name, p.reservedPrefix)
}

func (p *Picker) hasExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), p.extension)
}
