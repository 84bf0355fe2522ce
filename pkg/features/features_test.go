package features

import (
	"math"
	"testing"
)

func TestConfigFor(t *testing.T) {
	tests := []struct {
		rate             int
		window, hop, fft int
		high             float64
	}{
		{16000, 400, 160, 512, 7600},
		{8000, 200, 80, 256, 3900},
		{44100, 1102, 441, 2048, 7600},
	}
	for _, tt := range tests {
		cfg := ConfigFor(tt.rate)
		if cfg.WindowSize != tt.window || cfg.HopSize != tt.hop || cfg.FFTSize != tt.fft {
			t.Errorf("ConfigFor(%d) = window %d hop %d fft %d, want %d/%d/%d",
				tt.rate, cfg.WindowSize, cfg.HopSize, cfg.FFTSize, tt.window, tt.hop, tt.fft)
		}
		if cfg.HighFreq != tt.high {
			t.Errorf("ConfigFor(%d).HighFreq = %f, want %f", tt.rate, cfg.HighFreq, tt.high)
		}
	}
}

func TestHammingWindow(t *testing.T) {
	w := hammingWindow(400)
	if math.Abs(w[0]-0.08) > 0.01 {
		t.Errorf("w[0] = %f, want ~0.08", w[0])
	}
	if math.Abs(w[199]-1.0) > 0.02 {
		t.Errorf("w[199] = %f, want ~1.0", w[199])
	}
}

func TestMelConversion(t *testing.T) {
	mel := hzToMel(1000)
	if math.Abs(mel-1000.45) > 1.0 {
		t.Errorf("hzToMel(1000) = %f, want ~1000.45", mel)
	}
	if hz := melToHz(mel); math.Abs(hz-1000) > 0.1 {
		t.Errorf("round trip = %f, want 1000", hz)
	}
}

func TestMelFilterBank(t *testing.T) {
	bank := melFilterBank(80, 512, 16000, 20, 7600)
	if len(bank) != 80 {
		t.Fatalf("expected 80 filters, got %d", len(bank))
	}
	for i, f := range bank {
		if len(f) != 257 {
			t.Fatalf("filter %d: %d bins, want 257", i, len(f))
		}
		nonZero := false
		for _, v := range f {
			if v > 0 {
				nonZero = true
				break
			}
		}
		if !nonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func sine(n, rate int, freq float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return s
}

func TestExtractShape(t *testing.T) {
	e := New(ConfigFor(16000))
	feats := e.Extract(sine(16000, 16000, 440))

	// (16000 - 400) / 160 + 1
	shape := ShapeOf(feats)
	if shape.Frames != 98 || shape.Mels != 80 {
		t.Fatalf("shape = %v, want 98×80", shape)
	}
	if shape.String() != "98 frames × 80 mel bins" {
		t.Fatalf("String = %q", shape.String())
	}
	for _, row := range feats {
		for _, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatal("non-finite feature")
			}
		}
	}
}

func TestExtractTooShort(t *testing.T) {
	e := New(ConfigFor(16000))
	if feats := e.Extract(make([]float32, 399)); feats != nil {
		t.Fatalf("expected nil for short input, got %d frames", len(feats))
	}
	if ShapeOf(nil) != (Shape{}) {
		t.Fatal("ShapeOf(nil) not zero")
	}
}

func TestExtractPeaksAtToneBin(t *testing.T) {
	e := New(ConfigFor(16000))
	low := e.Extract(sine(4000, 16000, 300))
	high := e.Extract(sine(4000, 16000, 4000))

	argmax := func(row []float32) int {
		best := 0
		for i, v := range row {
			if v > row[best] {
				best = i
			}
		}
		return best
	}
	if argmax(low[5]) >= argmax(high[5]) {
		t.Fatalf("300 Hz peak bin %d not below 4 kHz peak bin %d", argmax(low[5]), argmax(high[5]))
	}
}
