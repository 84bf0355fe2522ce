// Package inspect runs the analysis applied to an uploaded clip: decode,
// feature extraction, prediction and history logging.
package inspect

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haivivi/speechcommands/pkg/features"
	"github.com/haivivi/speechcommands/pkg/history"
	"github.com/haivivi/speechcommands/pkg/predict"
	"github.com/haivivi/speechcommands/pkg/waveform"
)

// Report is the result of inspecting one clip.
type Report struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Filename   string         `json:"filename" yaml:"filename"`
	SampleRate int            `json:"sample_rate" yaml:"sample_rate"`
	Channels   int            `json:"channels" yaml:"channels"`
	BitDepth   int            `json:"bit_depth" yaml:"bit_depth"`
	Samples    int            `json:"samples" yaml:"samples"`
	Seconds    float64        `json:"seconds" yaml:"seconds"`
	Summary    string         `json:"summary" yaml:"summary"`
	Peak       float32        `json:"peak" yaml:"peak"`
	RMS        float64        `json:"rms" yaml:"rms"`
	Features   features.Shape `json:"features" yaml:"features"`
	Prediction string         `json:"prediction" yaml:"prediction"`

	// ModelLoaded is false when Prediction is a placeholder message.
	ModelLoaded bool `json:"model_loaded" yaml:"model_loaded"`

	Clip *waveform.Clip `json:"-" yaml:"-"`
}

// Inspector analyzes decoded clips. A nil History disables logging and a
// nil Predictor behaves like predict.Stub.
type Inspector struct {
	Predictor predict.Predictor
	History   *history.Store
}

// File decodes the WAV file at path and analyzes it. name is the
// user-facing file name recorded in the report.
func (in *Inspector) File(ctx context.Context, name, path string) (*Report, error) {
	clip, err := waveform.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return in.Clip(ctx, name, clip)
}

// Clip analyzes an already decoded clip.
func (in *Inspector) Clip(ctx context.Context, name string, clip *waveform.Clip) (*Report, error) {
	ext := features.New(features.ConfigFor(clip.SampleRate))
	feats := ext.Extract(clip.Samples)

	var p predict.Predictor = predict.Stub{}
	if in.Predictor != nil {
		p = in.Predictor
	}
	pred, perr := p.Predict(ctx, feats)

	rep := &Report{
		Filename:    name,
		SampleRate:  clip.SampleRate,
		Channels:    clip.Channels,
		BitDepth:    clip.BitDepth,
		Samples:     clip.Len(),
		Seconds:     clip.Seconds(),
		Summary:     clip.Summary(),
		Peak:        clip.Peak(),
		RMS:         clip.RMS(),
		Features:    features.ShapeOf(feats),
		Prediction:  predict.Message(pred, perr),
		ModelLoaded: perr == nil,
		Clip:        clip,
	}
	if perr != nil && !errors.Is(perr, predict.ErrModelNotLoaded) {
		slog.Warn("prediction failed", "file", name, "error", perr)
	}

	if in.History != nil {
		rec, err := in.History.Add(ctx, history.Record{
			Filename:   name,
			SampleRate: rep.SampleRate,
			Samples:    rep.Samples,
			Channels:   rep.Channels,
			Seconds:    rep.Seconds,
			Peak:       rep.Peak,
			Frames:     rep.Features.Frames,
		})
		if err != nil {
			// The report is still useful without a log entry.
			slog.Warn("failed to record inspection", "file", name, "error", err)
		} else {
			rep.ID = rec.ID
		}
	}
	return rep, nil
}
