package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/config"
	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/transform"
)

// Generator handles report generation and HTML conversion
type Generator struct {
	htmlBuilder *HTMLBuilder
	log         *logger.Logger
}

// NewGenerator creates a new report generator
func NewGenerator() *Generator {
	return &Generator{
		htmlBuilder: NewHTMLBuilder(),
		log:         logger.WithComponent("reports"),
	}
}

// GenerateHTML builds the complete HTML report: narrative, interactive
// charts, and the correlation heatmap. Individual chart failures are
// replaced with a placeholder so the report always renders.
func (g *Generator) GenerateHTML(dataset *models.Dataset, correlations map[string]map[string]*float64, narrative string) (string, error) {
	if dataset == nil || len(dataset.Records) == 0 {
		return "", fmt.Errorf("dataset has no records")
	}

	htmlContent, err := g.htmlBuilder.ConvertMarkdownToHTML(narrative)
	if err != nil {
		return "", fmt.Errorf("failed to convert narrative: %w", err)
	}

	var chartSections []string

	lineSeries := transform.ForLine(dataset.Records)
	indicators := make([]string, 0, len(lineSeries))
	for code := range lineSeries {
		indicators = append(indicators, code)
	}
	sort.Strings(indicators)

	for _, indicator := range indicators {
		chart, err := g.generateLineChart(indicator, lineSeries[indicator])
		if err != nil {
			g.log.Warn("Failed to generate line chart", map[string]interface{}{
				"indicator": indicator,
				"error":     err.Error(),
			})
			chart = fmt.Sprintf("<p>Chart unavailable for %s</p>", indicator)
		}
		chartSections = append(chartSections, chart)
	}

	if len(indicators) > 0 {
		barSeries := transform.ForBar(dataset.Records)
		if chart, err := g.generateBarChart(indicators[0], barSeries); err == nil {
			chartSections = append(chartSections, chart)
		} else {
			g.log.Warn("Failed to generate bar chart", map[string]interface{}{"error": err.Error()})
		}
	}

	if scatter := transform.ForScatter(dataset.Records); len(scatter) > 0 {
		if chart, err := g.generateScatterChart(dataset.Records, scatter); err == nil {
			chartSections = append(chartSections, chart)
		} else {
			g.log.Warn("Failed to generate scatter chart", map[string]interface{}{"error": err.Error()})
		}
	}

	if len(correlations) > 1 {
		if chart, err := g.generateCorrelationHeatmap(correlations); err == nil {
			chartSections = append(chartSections, chart)
		} else {
			g.log.Warn("Failed to generate correlation heatmap", map[string]interface{}{"error": err.Error()})
		}
	}

	fullHTML := g.buildCompleteHTML(dataset, htmlContent, chartSections)
	g.log.Debug("Generated HTML report", map[string]interface{}{"chars": len(fullHTML)})
	return fullHTML, nil
}

// buildCompleteHTML creates a complete HTML document
func (g *Generator) buildCompleteHTML(dataset *models.Dataset, content string, chartSections []string) string {
	generatedAt := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")

	sources := make(map[string]struct{})
	for _, ind := range dataset.Indicators {
		if ind.Source != "" {
			sources[ind.Source] = struct{}{}
		}
	}
	sourceList := make([]string, 0, len(sources))
	for s := range sources {
		sourceList = append(sourceList, s)
	}
	sort.Strings(sourceList)

	// Unbounded requests carry zero year bounds; show the observed span
	// instead.
	startYear, endYear := dataset.StartYear, dataset.EndYear
	if startYear == 0 || endYear == 0 {
		startYear, endYear = recordYearSpan(dataset.Records)
	}

	var charts strings.Builder
	for _, section := range chartSections {
		charts.WriteString(`<div class="chart-container">`)
		charts.WriteString(section)
		charts.WriteString("</div>\n")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>World Insights Report - %s</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f8f9fa;
        }
        .header {
            background: linear-gradient(135deg, #1d976c 0%%, #2f80ed 100%%);
            color: white;
            padding: 30px;
            border-radius: 10px;
            margin-bottom: 30px;
            text-align: center;
        }
        .header h1 { margin: 0; font-size: 2.5em; }
        .header .timestamp { opacity: 0.9; margin-top: 10px; }
        .summary-cards {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .card {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            border-left: 4px solid #2f80ed;
        }
        .card h3 { margin-top: 0; color: #2f80ed; }
        .metric { font-size: 1.5em; font-weight: bold; color: #333; }
        .content, .charts-section {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            margin-bottom: 30px;
        }
        .chart-container { margin-bottom: 40px; }
        .footer { text-align: center; color: #666; font-size: 0.9em; margin-top: 30px; }
        h1, h2, h3 { color: #333; }
        h2 { border-bottom: 2px solid #2f80ed; padding-bottom: 5px; }
        code { background: #f4f4f4; padding: 2px 4px; border-radius: 3px; }
        pre { background: #f4f4f4; padding: 15px; border-radius: 5px; overflow-x: auto; }
        table { border-collapse: collapse; width: 100%%; margin: 20px 0; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background-color: #f8f9fa; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>🌍 World Insights Report</h1>
        <div class="timestamp">Generated: %s</div>
    </div>

    <div class="summary-cards">
        <div class="card">
            <h3>Indicators</h3>
            <div class="metric">%d</div>
            <div>From %s</div>
        </div>
        <div class="card">
            <h3>Countries</h3>
            <div class="metric">%d</div>
        </div>
        <div class="card">
            <h3>Coverage</h3>
            <div class="metric">%d&ndash;%d</div>
        </div>
        <div class="card">
            <h3>Observations</h3>
            <div class="metric">%d</div>
        </div>
    </div>

    <div class="content">
        %s
    </div>

    <div class="charts-section">
        <h2>📊 Data Visualization</h2>
        %s
    </div>

    <div class="footer">
        <p>Report generated by World Insights v%s | Data sources: %s</p>
    </div>
</body>
</html>`,
		dataset.FetchedAt.Format("2006-01-02"),
		generatedAt,
		len(dataset.Indicators),
		strings.Join(sourceList, ", "),
		len(dataset.Countries),
		startYear,
		endYear,
		len(dataset.Records),
		content,
		charts.String(),
		config.GetVersion(),
		strings.Join(sourceList, ", "),
	)
}

// recordYearSpan returns the min and max year across records.
func recordYearSpan(records []models.Record) (int, int) {
	var minYear, maxYear int
	for _, r := range records {
		if minYear == 0 || r.Year < minYear {
			minYear = r.Year
		}
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	return minYear, maxYear
}
