package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bonzainsights/WorldInsights/internal/transform"
)

// renderBarChart draws the latest value of the first indicator for every
// country in the projection.
func (r *Renderer) renderBarChart(series transform.BarSeries) (string, error) {
	// Pick a single indicator to compare across countries. The
	// projection keys are not ordered, so take the lexicographically
	// first one for a stable choice.
	var indicator string
	for _, indicators := range series {
		for code := range indicators {
			if indicator == "" || code < indicator {
				indicator = code
			}
		}
	}
	if indicator == "" {
		return "", fmt.Errorf("no indicators in bar projection")
	}

	countries := make([]string, 0, len(series))
	for country, indicators := range series {
		if yv, ok := indicators[indicator]; ok && yv.Value != nil {
			countries = append(countries, country)
		}
	}
	if len(countries) == 0 {
		return "", fmt.Errorf("no plottable values for indicator %s", indicator)
	}
	sort.Strings(countries)

	values := make([]chart.Value, 0, len(countries))
	for i, country := range countries {
		values = append(values, chart.Value{
			Label: country,
			Value: *series[country][indicator].Value,
			Style: chart.Style{
				FillColor:   seriesPalette[i%len(seriesPalette)],
				StrokeColor: seriesPalette[i%len(seriesPalette)],
			},
		})
	}

	filename := filepath.Join(r.outputDir, fmt.Sprintf("bar_%s.png", slug(indicator)))

	graph := chart.BarChart{
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
		Height:   400,
		Width:    800,
		BarWidth: 40,
		XAxis: chart.Style{
			FontSize: 10,
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
		Bars: values,
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create bar chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render bar chart: %w", err)
	}
	return filename, nil
}
