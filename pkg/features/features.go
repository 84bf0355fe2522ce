// Package features computes log mel filterbank features, the input
// representation expected by keyword-spotting models.
//
// Parameters follow the Kaldi convention, scaled to the clip's rate:
//
//	WindowSize:  25 ms
//	HopSize:     10 ms
//	FFTSize:     next power of two >= WindowSize
//	NumMels:     80
//	LowFreq:     20 Hz
//	HighFreq:    min(7600 Hz, Nyquist - 100 Hz)
//	PreEmphasis: 0.97
package features

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Config controls mel filterbank extraction.
type Config struct {
	SampleRate  int     // audio sample rate in Hz
	WindowSize  int     // window length in samples
	HopSize     int     // hop length in samples
	FFTSize     int     // FFT size
	NumMels     int     // number of mel bins
	LowFreq     float64 // lowest mel frequency
	HighFreq    float64 // highest mel frequency
	PreEmphasis float64 // pre-emphasis coefficient
}

// ConfigFor derives a configuration for the given sample rate.
func ConfigFor(sampleRate int) Config {
	window := sampleRate * 25 / 1000
	nfft := 1
	for nfft < window {
		nfft <<= 1
	}
	high := 7600.0
	if nyq := float64(sampleRate)/2 - 100; nyq < high {
		high = nyq
	}
	return Config{
		SampleRate:  sampleRate,
		WindowSize:  window,
		HopSize:     sampleRate * 10 / 1000,
		FFTSize:     nfft,
		NumMels:     80,
		LowFreq:     20,
		HighFreq:    high,
		PreEmphasis: 0.97,
	}
}

// Shape is the size of a feature matrix.
type Shape struct {
	Frames int `json:"frames" yaml:"frames"`
	Mels   int `json:"mels" yaml:"mels"`
}

func (s Shape) String() string {
	return fmt.Sprintf("%d frames × %d mel bins", s.Frames, s.Mels)
}

// ShapeOf returns the shape of a feature matrix.
func ShapeOf(features [][]float32) Shape {
	if len(features) == 0 {
		return Shape{}
	}
	return Shape{Frames: len(features), Mels: len(features[0])}
}

// Extractor computes mel filterbank features from samples.
type Extractor struct {
	cfg     Config
	window  []float64 // Hamming window
	melBank [][]float64
}

// New creates an Extractor with the given config.
func New(cfg Config) *Extractor {
	return &Extractor{
		cfg:     cfg,
		window:  hammingWindow(cfg.WindowSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
	}
}

// frames returns the number of feature frames produced for n samples.
func (e *Extractor) frames(n int) int {
	if n < e.cfg.WindowSize {
		return 0
	}
	return (n-e.cfg.WindowSize)/e.cfg.HopSize + 1
}

// Extract computes log mel filterbank features from samples in [-1, 1].
// The result is a [frames][NumMels] matrix; nil if the input is shorter
// than one window.
func (e *Extractor) Extract(samples []float32) [][]float32 {
	cfg := e.cfg
	numFrames := e.frames(len(samples))
	if numFrames == 0 {
		return nil
	}
	halfFFT := cfg.FFTSize/2 + 1

	features := make([][]float32, numFrames)
	frame := make([]float64, cfg.FFTSize)
	power := make([]float64, halfFFT)

	for t := range numFrames {
		start := t * cfg.HopSize
		for i := range cfg.WindowSize {
			s := float64(samples[start+i])
			if i > 0 {
				s -= cfg.PreEmphasis * float64(samples[start+i-1])
			}
			frame[i] = s * e.window[i]
		}
		clear(frame[cfg.WindowSize:])

		spectrum := fft.FFTReal(frame)
		for k := range halfFFT {
			re, im := real(spectrum[k]), imag(spectrum[k])
			power[k] = re*re + im*im
		}

		mel := make([]float32, cfg.NumMels)
		for m, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				sum += w * power[k]
			}
			// Floor keeps silence finite.
			mel[m] = float32(math.Log(max(sum, 1e-10)))
		}
		features[t] = mel
	}
	return features
}
