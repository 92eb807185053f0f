// Package chart renders the monthly CO₂ series to an image file.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/nyc-taxi-co2/analysis/internal/emissions"
)

// Sink turns a reconciled monthly series into an artifact and returns its location
type Sink interface {
	Plot(rows []emissions.MonthlyRow) (string, error)
}

var (
	yellowColor = color.RGBA{R: 255, G: 215, A: 255} // gold
	greenColor  = color.RGBA{G: 128, A: 255}
)

// PNGSink draws a two-line chart over Jan..Dec and writes it as PNG
type PNGSink struct {
	Path   string
	DPI    int
	Width  vg.Length
	Height vg.Length
}

// NewPNGSink creates a sink writing a 14x6 inch PNG to path
func NewPNGSink(path string, dpi int) *PNGSink {
	return &PNGSink{
		Path:   path,
		DPI:    dpi,
		Width:  14 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Plot renders rows and writes the image to s.Path. Months 1-12 missing
// from rows are drawn as 0; ordinals outside 1-12 are not drawn.
func (s *PNGSink) Plot(rows []emissions.MonthlyRow) (string, error) {
	if len(rows) == 0 {
		return "", errors.New("no monthly totals to plot")
	}

	p, err := newMonthlyPlot(rows)
	if err != nil {
		return "", err
	}

	c := vgimg.NewWith(vgimg.UseWH(s.Width, s.Height), vgimg.UseDPI(s.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", s.Path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %s: %w", s.Path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return s.Path, nil
}

// newMonthlyPlot builds the plot. gonum draws only the bottom and left
// axes, so there is no top or right frame.
func newMonthlyPlot(rows []emissions.MonthlyRow) (*plot.Plot, error) {
	yellow, green := MonthlyPoints(rows)

	p := plot.New()
	p.Title.Text = "Monthly Taxi CO₂ Totals"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Total CO₂ (kg)"
	p.X.Min, p.X.Max = 0.5, 12.5
	p.X.Tick.Marker = monthTicks()
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true

	for _, series := range []struct {
		name  string
		xys   plotter.XYs
		color color.Color
	}{
		{"Yellow", yellow, yellowColor},
		{"Green", green, greenColor},
	} {
		line, points, err := plotter.NewLinePoints(series.xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s series: %w", series.name, err)
		}
		line.Color = series.color
		points.Color = series.color
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(series.name, line, points)
	}
	return p, nil
}

// MonthlyPoints places each fleet's totals at x = 1..12
func MonthlyPoints(rows []emissions.MonthlyRow) (yellow, green plotter.XYs) {
	yellow = make(plotter.XYs, 12)
	green = make(plotter.XYs, 12)
	for i := range yellow {
		yellow[i].X = float64(i + 1)
		green[i].X = float64(i + 1)
	}
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		yellow[row.Month-1].Y = row.YellowCO2
		green[row.Month-1].Y = row.GreenCO2
	}
	return yellow, green
}

func monthTicks() plot.ConstantTicks {
	names := emissions.MonthNames()
	ticks := make(plot.ConstantTicks, len(names))
	for i, name := range names {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: name}
	}
	return ticks
}
