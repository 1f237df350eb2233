package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// seriesPalette is cycled across countries on multi-series charts.
var seriesPalette = []drawing.Color{
	{R: 51, G: 102, B: 204, A: 255},
	{R: 220, G: 57, B: 18, A: 255},
	{R: 255, G: 153, B: 0, A: 255},
	{R: 16, G: 150, B: 24, A: 255},
	{R: 153, G: 0, B: 153, A: 255},
	{R: 0, G: 153, B: 198, A: 255},
	{R: 221, G: 68, B: 119, A: 255},
	{R: 102, G: 170, B: 0, A: 255},
	{R: 184, G: 46, B: 46, A: 255},
	{R: 49, G: 99, B: 149, A: 255},
}

// renderLineChart draws one indicator as a per-country time series.
func (r *Renderer) renderLineChart(indicator string, countries map[string]map[int]*float64) (string, error) {
	filename := filepath.Join(r.outputDir, fmt.Sprintf("line_%s.png", slug(indicator)))

	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var series []chart.Series
	for i, code := range codes {
		years := make([]int, 0, len(countries[code]))
		for year, value := range countries[code] {
			if value != nil {
				years = append(years, year)
			}
		}
		if len(years) < 2 {
			continue
		}
		sort.Ints(years)

		xValues := make([]float64, 0, len(years))
		yValues := make([]float64, 0, len(years))
		for _, year := range years {
			xValues = append(xValues, float64(year))
			yValues = append(yValues, *countries[code][year])
		}

		color := seriesPalette[i%len(seriesPalette)]
		series = append(series, chart.ContinuousSeries{
			Name: code,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
			},
			XValues: xValues,
			YValues: yValues,
		})
	}

	if len(series) == 0 {
		return "", fmt.Errorf("no plottable series for indicator %s", indicator)
	}

	graph := chart.Chart{
		Title: indicator,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   70,
				Right:  20,
				Bottom: 40,
			},
		},
		Height: 400,
		Width:  800,
		XAxis: chart.XAxis{
			Name: "Year",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Value",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create line chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render line chart: %w", err)
	}
	return filename, nil
}
