package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

const (
	whoBaseURL        = "https://ghoapi.azureedge.net/api"
	whoSourceName     = "WHO"
	whoRateDelay      = 200 * time.Millisecond
	whoIndicatorLimit = 100
)

// WHOClient fetches health indicators from the WHO Global Health
// Observatory OData API. Covers 194 member states from 1990 onward.
type WHOClient struct {
	base *baseClient
}

// NewWHOClient creates a WHO GHO API client
func NewWHOClient(opts Options) *WHOClient {
	opts = opts.withDefaults(whoBaseURL, whoRateDelay)
	return &WHOClient{base: newBaseClient(opts, "who")}
}

// Name returns the human-readable provider name
func (c *WHOClient) Name() string {
	return whoSourceName
}

// GetCountries fetches the WHO member state dimension
func (c *WHOClient) GetCountries(ctx context.Context) ([]models.Country, error) {
	body, err := c.base.get(ctx, "/DIMENSION/COUNTRY/DimensionValues", nil)
	if err != nil {
		return nil, err
	}

	var resp models.WHOCountryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from WHO API: %w", err)
	}

	countries := make([]models.Country, 0, len(resp.Value))
	for _, dv := range resp.Value {
		countries = append(countries, models.Country{
			Code:   dv.Code,
			Name:   dv.Title,
			Region: dv.ParentTitle,
		})
	}

	c.base.log.Infof("Fetched %d countries from WHO API", len(countries))
	return countries, nil
}

// GetIndicators fetches the first page of the GHO indicator catalog
func (c *WHOClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	body, err := c.base.get(ctx, "/Indicator", map[string]string{
		"$top": fmt.Sprintf("%d", whoIndicatorLimit),
	})
	if err != nil {
		return nil, err
	}

	var resp models.WHOIndicatorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from WHO API: %w", err)
	}

	indicators := make([]models.Indicator, 0, len(resp.Value))
	for _, wi := range resp.Value {
		indicators = append(indicators, models.Indicator{
			Code:        wi.IndicatorCode,
			Name:        wi.IndicatorName,
			Description: wi.IndicatorName,
		})
	}

	c.base.log.Infof("Fetched %d indicators from WHO API", len(indicators))
	return indicators, nil
}

// GetData fetches one country/indicator series. The GHO API filters by
// country server-side; year bounds are applied client-side because the
// OData TimeDim filter is unreliable across indicators.
func (c *WHOClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	filter := fmt.Sprintf("SpatialDim eq '%s'", countryCode)
	if indicatorCode != "" {
		filter += fmt.Sprintf(" and IndicatorCode eq '%s'", indicatorCode)
	}

	body, err := c.base.get(ctx, "/"+indicatorCode, map[string]string{
		"$filter": filter,
	})
	if err != nil {
		return nil, err
	}

	var resp models.WHODataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from WHO API: %w", err)
	}
	if len(resp.Value) == 0 {
		c.base.log.Warnf("No data found for %s - %s", countryCode, indicatorCode)
		return []models.Record{}, nil
	}

	records := make([]models.Record, 0, len(resp.Value))
	for _, obs := range resp.Value {
		if startYear != 0 && obs.TimeDim < startYear {
			continue
		}
		if endYear != 0 && obs.TimeDim > endYear {
			continue
		}
		records = append(records, models.Record{
			Country:   obs.SpatialDim,
			Year:      obs.TimeDim,
			Indicator: obs.IndicatorCode,
			Value:     obs.NumericValue,
			Source:    whoSourceName,
		})
	}

	c.base.log.Infof("Fetched %d health data points for %s", len(records), countryCode)
	return records, nil
}
