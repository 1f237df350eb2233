package reports

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/transform"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"
)

// generateLineChart creates a per-country time series for one indicator.
func (g *Generator) generateLineChart(indicator string, countries map[string]map[int]*float64) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: indicator,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Year",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Value",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: true,
			Top:  "30px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    true,
			Trigger: "axis",
		}),
	)

	yearSet := make(map[int]struct{})
	for _, years := range countries {
		for year := range years {
			yearSet[year] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return "", fmt.Errorf("no years for indicator %s", indicator)
	}

	xAxis := make([]string, len(years))
	for i, year := range years {
		xAxis[i] = fmt.Sprintf("%d", year)
	}
	line.SetXAxis(xAxis)

	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		seriesData := make([]opts.LineData, len(years))
		for i, year := range years {
			if v, ok := countries[code][year]; ok && v != nil {
				seriesData[i] = opts.LineData{Value: *v}
			} else {
				seriesData[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(code, seriesData)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateBarChart compares the latest values of one indicator across countries.
func (g *Generator) generateBarChart(indicator string, series transform.BarSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    indicator,
			Subtitle: "Latest available value per country",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Value",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: true,
		}),
	)

	countries := make([]string, 0, len(series))
	for country, indicators := range series {
		if yv, ok := indicators[indicator]; ok && yv.Value != nil {
			countries = append(countries, country)
		}
	}
	if len(countries) == 0 {
		return "", fmt.Errorf("no values for indicator %s", indicator)
	}
	sort.Strings(countries)

	barData := make([]opts.BarData, len(countries))
	for i, country := range countries {
		yv := series[country][indicator]
		barData[i] = opts.BarData{
			Value: *yv.Value,
			Name:  fmt.Sprintf("%s (%d)", country, yv.Year),
		}
	}

	bar.SetXAxis(countries).AddSeries(indicator, barData)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateScatterChart plots the first two indicators against each other.
func (g *Generator) generateScatterChart(records []models.Record, series transform.ScatterSeries) (string, error) {
	var xInd, yInd string
	for _, r := range records {
		switch {
		case xInd == "":
			xInd = r.Indicator
		case yInd == "" && r.Indicator != xInd:
			yInd = r.Indicator
		}
		if yInd != "" {
			break
		}
	}
	if yInd == "" {
		return "", fmt.Errorf("scatter chart needs two indicators")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s vs %s", xInd, yInd),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xInd,
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yInd,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: true,
		}),
	)

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

	scatterData := make([]opts.ScatterData, len(countries))
	for i, country := range countries {
		scatterData[i] = opts.ScatterData{
			Name:  country,
			Value: []interface{}{*series[country][xInd], *series[country][yInd]},
		}
	}

	scatter.AddSeries("Countries", scatterData)

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateCorrelationHeatmap renders the Pearson matrix as a heatmap.
func (g *Generator) generateCorrelationHeatmap(matrix map[string]map[string]*float64) (string, error) {
	if len(matrix) == 0 {
		return "", fmt.Errorf("empty correlation matrix")
	}

	codes := make([]string, 0, len(matrix))
	for code := range matrix {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Indicator Correlations",
			Subtitle: "Pairwise-complete Pearson coefficients",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Data: codes,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Data: codes,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        -1,
			Max:        1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#74add1", "#e0f3f8", "#fee090", "#f46d43", "#a50026"},
			},
		}),
	)

	var heatmapData []opts.HeatMapData
	for x, xCode := range codes {
		for y, yCode := range codes {
			coeff := matrix[xCode][yCode]
			if coeff == nil {
				continue
			}
			heatmapData = append(heatmapData, opts.HeatMapData{
				Value: [3]interface{}{x, y, *coeff},
			})
		}
	}
	heatmap.AddSeries("pearson", heatmapData)

	var buf bytes.Buffer
	if err := heatmap.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
