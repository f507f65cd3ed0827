// Package plot is the optional drawing side channel of the calibration
// routines: callers hand in an Axis and get points and fit lines drawn on
// it.
package plot

import (
	"bytes"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Axis accepts scatter points and lines.
type Axis interface {
	Scatter(name string, x, y []float64, color drawing.Color)
	Line(name string, x, y []float64, color drawing.Color, dashed bool)
}

// ChartAxis collects series and renders them to PNG with go-chart.
type ChartAxis struct {
	XLabel string
	YLabel string
	Width  int
	Height int

	series []chart.Series
}

func NewAxis(xLabel, yLabel string) *ChartAxis {
	return &ChartAxis{
		XLabel: xLabel,
		YLabel: yLabel,
		Width:  640,
		Height: 480,
	}
}

func (a *ChartAxis) Scatter(name string, x, y []float64, color drawing.Color) {
	a.series = append(a.series, chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    color,
		},
		XValues: x,
		YValues: y,
	})
}

func (a *ChartAxis) Line(name string, x, y []float64, color drawing.Color, dashed bool) {
	style := chart.Style{
		StrokeWidth: 2,
		StrokeColor: color,
	}
	if dashed {
		style.StrokeDashArray = []float64{5, 5}
	}

	a.series = append(a.series, chart.ContinuousSeries{
		Name:    name,
		Style:   style,
		XValues: x,
		YValues: y,
	})
}

func (a *ChartAxis) Len() int {
	return len(a.series)
}

// Render writes the axis as a PNG.
func (a *ChartAxis) Render(w io.Writer) error {
	graph := chart.Chart{
		Width:  a.Width,
		Height: a.Height,
		XAxis: chart.XAxis{
			Name: a.XLabel,
		},
		YAxis: chart.YAxis{
			Name: a.YLabel,
		},
		Series: a.series,
	}

	return graph.Render(chart.PNG, w)
}

// Save renders the axis to a PNG file.
func (a *ChartAxis) Save(path string) error {
	// Render to a byte buffer so a failed render leaves no file behind
	buffer := bytes.NewBuffer([]byte{})
	if err := a.Render(buffer); err != nil {
		return pfx.Err(err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return pfx.Err(err)
	}

	return nil
}
