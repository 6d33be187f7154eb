package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"finagent/internal/domain"
)

// Renderer draws a fiscal-year trend as a bar chart with a line overlay
// and saves it as a PNG.
type Renderer struct {
	outputPath string
}

var _ domain.ChartRenderer = (*Renderer)(nil)

func NewRenderer(outputPath string) *Renderer {
	return &Renderer{outputPath: outputPath}
}

// Render saves the chart and returns its path. Values are plotted in
// ascending year order.
func (r *Renderer) Render(metricLabel string, valuesByYear map[string]float64) (string, error) {
	if len(valuesByYear) == 0 {
		return "", fmt.Errorf("no values to plot")
	}

	years := make([]string, 0, len(valuesByYear))
	for y := range valuesByYear {
		years = append(years, y)
	}
	sort.Strings(years)

	values := make(plotter.Values, len(years))
	points := make(plotter.XYs, len(years))
	for i, y := range years {
		values[i] = valuesByYear[y]
		points[i].X = float64(i)
		points[i].Y = valuesByYear[y]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Trend by Fiscal Year", metricLabel)
	p.X.Label.Text = "Fiscal Year"
	p.Y.Label.Text = fmt.Sprintf("%s (USD millions)", metricLabel)

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return "", fmt.Errorf("build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(years...)

	if len(points) > 1 {
		line, err := plotter.NewLine(points)
		if err != nil {
			return "", fmt.Errorf("build trend line: %w", err)
		}
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
	}

	if err := os.MkdirAll(filepath.Dir(r.outputPath), 0o755); err != nil {
		return "", err
	}
	if err := p.Save(9*vg.Inch, 5*vg.Inch, r.outputPath); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return r.outputPath, nil
}
