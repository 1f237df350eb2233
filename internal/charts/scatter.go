package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/transform"
)

// renderScatterChart plots the first two indicators against each other,
// one dot per country.
func (r *Renderer) renderScatterChart(records []models.Record, series transform.ScatterSeries) (string, error) {
	var xInd, yInd string
	for _, rec := range records {
		switch {
		case xInd == "":
			xInd = rec.Indicator
		case yInd == "" && rec.Indicator != xInd:
			yInd = rec.Indicator
		}
		if yInd != "" {
			break
		}
	}
	if yInd == "" {
		return "", fmt.Errorf("scatter chart needs two indicators")
	}

	countries := make([]string, 0, len(series))
	for country, values := range series {
		if values[xInd] != nil && values[yInd] != nil {
			countries = append(countries, country)
		}
	}
	if len(countries) == 0 {
		return "", fmt.Errorf("no countries with both %s and %s", xInd, yInd)
	}
	sort.Strings(countries)

	xValues := make([]float64, 0, len(countries))
	yValues := make([]float64, 0, len(countries))
	for _, country := range countries {
		xValues = append(xValues, *series[country][xInd])
		yValues = append(yValues, *series[country][yInd])
	}

	filename := filepath.Join(r.outputDir, fmt.Sprintf("scatter_%s_%s.png", slug(xInd), slug(yInd)))

	graph := chart.Chart{
		Title: fmt.Sprintf("%s vs %s", xInd, yInd),
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
			Name: xInd,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		YAxis: chart.YAxis{
			Name: yInd,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Countries",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotColor:    seriesPalette[0],
					DotWidth:    6,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create scatter chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render scatter chart: %w", err)
	}
	return filename, nil
}
