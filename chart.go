package folio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/foliotrack/folio/date"
)

// RenderSeriesChart renders a performance series as a PNG line chart and
// returns the raw bytes. It needs at least two points to draw a line.
func RenderSeriesChart(points []ValuePoint, period date.Period) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date.Time()
		yValues[i] = p.AbsoluteValue
	}

	series := chart.TimeSeries{
		Name: "Gain/Loss",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: yValues,
	}

	zero := chart.TimeSeries{
		Name: "Break even",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{4.0, 3.0},
		},
		XValues: []time.Time{xValues[0], xValues[len(xValues)-1]},
		YValues: []float64{0, 0},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Portfolio Gain/Loss (%s)", period),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).Format("Jan 2")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{series, zero},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
