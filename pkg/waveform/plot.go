package waveform

import (
	"bytes"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default figure size, roughly matching a 6.4x4.8 inch chart.
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
)

// Figure is a line plot of a clip: x is the sample index, y the amplitude.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length

	points plotter.XYs
}

// NewFigure builds the waveform figure of c with one point per sample.
func NewFigure(c *Clip) *Figure {
	pts := make(plotter.XYs, len(c.Samples))
	for i, s := range c.Samples {
		pts[i].X = float64(i)
		pts[i].Y = float64(s)
	}
	return &Figure{
		XLabel: "Time",
		YLabel: "Amplitude",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		points: pts,
	}
}

// Len returns the number of plotted x values.
func (f *Figure) Len() int {
	return len(f.points)
}

// Plot assembles the gonum plot.
func (f *Figure) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel

	line, err := plotter.NewLine(f.points)
	if err != nil {
		return nil, fmt.Errorf("waveform: build line: %w", err)
	}
	line.LineStyle.Width = vg.Points(0.5)
	p.Add(line)
	return p, nil
}

// WriteTo renders the figure as PNG.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	p, err := f.Plot()
	if err != nil {
		return 0, err
	}
	wt, err := p.WriterTo(f.Width, f.Height, "png")
	if err != nil {
		return 0, fmt.Errorf("waveform: render: %w", err)
	}
	return wt.WriteTo(w)
}

// PNG renders the figure into memory.
func (f *Figure) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
