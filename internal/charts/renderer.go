package charts

import (
	"fmt"
	"sort"

	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/transform"
)

// Renderer handles creation of static chart images
type Renderer struct {
	outputDir string
	log       *logger.Logger
}

// NewRenderer creates a new chart renderer writing PNGs to outputDir
func NewRenderer(outputDir string) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		log:       logger.WithComponent("charts"),
	}
}

// RenderAll creates all chart images for a dataset. Individual chart
// failures are logged and skipped so one bad projection does not sink
// the whole report.
func (r *Renderer) RenderAll(records []models.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to render")
	}

	var chartFiles []string

	lineSeries := transform.ForLine(records)
	for _, indicator := range sortedKeysLine(lineSeries) {
		file, err := r.renderLineChart(indicator, lineSeries[indicator])
		if err != nil {
			r.log.Warn("Failed to render line chart", map[string]interface{}{
				"indicator": indicator,
				"error":     err.Error(),
			})
			continue
		}
		chartFiles = append(chartFiles, file)
	}

	if file, err := r.renderBarChart(transform.ForBar(records)); err == nil {
		chartFiles = append(chartFiles, file)
	} else {
		r.log.Warn("Failed to render bar chart", map[string]interface{}{"error": err.Error()})
	}

	if scatter := transform.ForScatter(records); len(scatter) > 0 {
		if file, err := r.renderScatterChart(records, scatter); err == nil {
			chartFiles = append(chartFiles, file)
		} else {
			r.log.Warn("Failed to render scatter chart", map[string]interface{}{"error": err.Error()})
		}
	}

	return chartFiles, nil
}

func sortedKeysLine(series transform.LineSeries) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// slug converts an indicator code to a filesystem-safe file stem.
func slug(code string) string {
	out := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		b := code[i]
		switch {
		case b >= 'a' && b <= 'z', b >= '0' && b <= '9':
			out = append(out, b)
		case b >= 'A' && b <= 'Z':
			out = append(out, b+32)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
