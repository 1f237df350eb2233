package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/aggregator"
	"github.com/bonzainsights/WorldInsights/internal/charts"
	"github.com/bonzainsights/WorldInsights/internal/correlate"
	"github.com/bonzainsights/WorldInsights/internal/llm"
	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/storage"
)

// GeneratedFiles holds everything a snapshot run produced.
type GeneratedFiles struct {
	FolderPath  string
	HTMLContent string
	JSONFiles   map[string][]byte
	ChartFiles  []string
}

// Service orchestrates snapshot generation: fetch, correlate,
// narrate, render, persist.
type Service struct {
	aggregator *aggregator.Aggregator
	narrative  *llm.NarrativeClient
	generator  *Generator
	storage    storage.Client
	log        *logger.Logger
}

// NewService creates a report service
func NewService(agg *aggregator.Aggregator, narrative *llm.NarrativeClient, store storage.Client) *Service {
	return &Service{
		aggregator: agg,
		narrative:  narrative,
		generator:  NewGenerator(),
		storage:    store,
		log:        logger.WithComponent("reports"),
	}
}

// GenerateSnapshot runs the full pipeline and persists the result.
// Returns the snapshot folder path.
func (s *Service) GenerateSnapshot(ctx context.Context, indicators, countries []string, startYear, endYear int) (string, error) {
	s.log.Info("Starting snapshot generation", map[string]interface{}{
		"indicators": len(indicators),
		"countries":  len(countries),
		"start_year": startYear,
		"end_year":   endYear,
	})

	records, err := s.aggregator.FetchData(ctx, indicators, countries, startYear, endYear)
	if err != nil {
		return "", fmt.Errorf("failed to fetch data: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no data available for the requested indicators")
	}

	dataset, err := s.buildDataset(ctx, records, startYear, endYear)
	if err != nil {
		return "", err
	}

	correlations, err := correlate.Matrix(records)
	if err != nil {
		s.log.Warn("Correlation computation failed", map[string]interface{}{"error": err.Error()})
		correlations = nil
	}

	narrative, err := s.narrative.Summarize(ctx, dataset, correlations)
	if err != nil {
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}

	files, err := s.generateFiles(dataset, correlations, narrative)
	if err != nil {
		return "", err
	}

	if err := s.storeFiles(ctx, files, dataset.FetchedAt); err != nil {
		return "", err
	}

	s.log.Info("Snapshot generation completed", map[string]interface{}{
		"folder": files.FolderPath,
	})
	return files.FolderPath, nil
}

// buildDataset wraps raw records with indicator and country metadata.
func (s *Service) buildDataset(ctx context.Context, records []models.Record, startYear, endYear int) (*models.Dataset, error) {
	dataset := &models.Dataset{
		StartYear: startYear,
		EndYear:   endYear,
		FetchedAt: time.Now().UTC(),
		Records:   records,
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.Indicator]; ok {
			continue
		}
		seen[r.Indicator] = struct{}{}
		dataset.Indicators = append(dataset.Indicators, models.Indicator{
			Code:   r.Indicator,
			Name:   r.Indicator,
			Source: r.Source,
		})
	}

	// Country metadata lookup is best-effort; codes alone still render.
	countries, err := s.aggregator.ListCountries(ctx)
	if err != nil {
		s.log.Warn("Country metadata unavailable", map[string]interface{}{"error": err.Error()})
	}
	byCode := make(map[string]models.Country, len(countries))
	for _, c := range countries {
		byCode[c.Code] = c
	}

	seenCountry := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seenCountry[r.Country]; ok {
			continue
		}
		seenCountry[r.Country] = struct{}{}
		if c, ok := byCode[r.Country]; ok {
			dataset.Countries = append(dataset.Countries, c)
		} else {
			dataset.Countries = append(dataset.Countries, models.Country{Code: r.Country, Name: r.Country})
		}
	}

	return dataset, nil
}

// generateFiles renders the HTML report, JSON payloads, and PNG charts.
func (s *Service) generateFiles(dataset *models.Dataset, correlations map[string]map[string]*float64, narrative string) (*GeneratedFiles, error) {
	htmlContent, err := s.generator.GenerateHTML(dataset, correlations, narrative)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML report: %w", err)
	}

	files := &GeneratedFiles{
		FolderPath:  storage.SnapshotFolderPath(dataset.FetchedAt),
		HTMLContent: htmlContent,
		JSONFiles:   make(map[string][]byte),
	}

	datasetJSON, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dataset: %w", err)
	}
	files.JSONFiles["data.json"] = datasetJSON

	if len(correlations) > 0 {
		corrJSON, err := json.MarshalIndent(correlations, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal correlations: %w", err)
		}
		files.JSONFiles["correlations.json"] = corrJSON
	}

	// PNG charts go to a temp dir and are uploaded as snapshot assets.
	tempDir, err := os.MkdirTemp("", "worldinsights_charts_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	renderer := charts.NewRenderer(tempDir)
	chartFiles, err := renderer.RenderAll(dataset.Records)
	if err != nil {
		s.log.Warn("PNG chart rendering failed", map[string]interface{}{"error": err.Error()})
	}
	files.ChartFiles = chartFiles

	return files, nil
}

// storeFiles persists all generated files through the storage client.
func (s *Service) storeFiles(ctx context.Context, files *GeneratedFiles, timestamp time.Time) error {
	if err := s.storage.StoreFile(ctx, []byte(files.HTMLContent), "report.html", timestamp); err != nil {
		return fmt.Errorf("failed to store HTML report: %w", err)
	}

	for filename, data := range files.JSONFiles {
		if err := s.storage.StoreFile(ctx, data, filename, timestamp); err != nil {
			return fmt.Errorf("failed to store %s: %w", filename, err)
		}
	}

	for _, chartPath := range files.ChartFiles {
		data, err := os.ReadFile(chartPath)
		if err != nil {
			s.log.Warn("Failed to read chart file", map[string]interface{}{
				"path":  chartPath,
				"error": err.Error(),
			})
			continue
		}
		if err := s.storage.StoreFile(ctx, data, filepath.Base(chartPath), timestamp); err != nil {
			return fmt.Errorf("failed to store chart %s: %w", filepath.Base(chartPath), err)
		}
	}

	// Chart temp dir is shared by all chart files.
	if len(files.ChartFiles) > 0 {
		_ = os.RemoveAll(filepath.Dir(files.ChartFiles[0]))
	}

	return nil
}
