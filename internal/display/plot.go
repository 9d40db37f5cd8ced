package display

import (
	"fmt"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/feed"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

// PlotFilename returns the chart filename for a channel and window.
func PlotFilename(ch telemetry.Channel, window time.Duration) string {
	return fmt.Sprintf("%s_last_%dhours.png", ch.Key, int(window.Hours()))
}

// SavePlot renders the points as a line chart and writes it to path.
// At least two points are needed to draw a line.
func SavePlot(points []feed.Point, ch telemetry.Channel, window time.Duration, path string) error {
	if len(points) < 2 {
		return errors.WithData(ErrNoData, "at least two points are needed to plot")
	}

	hours := int(window.Hours())
	title := channelTitle(ch)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Readings - Last %d Hours", title, hours)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", title, ch.Unit)
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04"}
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, point := range points {
		xys[i].X = float64(point.Time.Unix())
		xys[i].Y = point.Value
	}

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrap(ErrPlotFailed, err)
	}
	scatter.Radius = vg.Points(1.5)
	p.Add(line, scatter)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrap(ErrPlotFailed, err)
	}

	return nil
}
