package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

const (
	faoBaseURL       = "https://fenixservices.fao.org/faostat/api/v1/en"
	faoSourceName    = "FAO"
	faoRateDelay     = 200 * time.Millisecond
	faoDefaultDomain = "QCL"
	faoItemLimit     = 100
)

// faoDomains maps FAOSTAT domain codes to their dataset descriptions.
var faoDomains = map[string]string{
	"QC":   "Crops and livestock products",
	"QCL":  "Crops and livestock products",
	"QI":   "Production Indices",
	"QV":   "Value of Agricultural Production",
	"RL":   "Land Use",
	"RF":   "Fertilizers",
	"RP":   "Pesticides",
	"RT":   "Land Cover",
	"FBS":  "Food Balances",
	"FBSH": "Food Balances (Historic)",
	"FS":   "Food Security",
	"SUA":  "Supply Utilization Accounts",
}

// FAOClient fetches agriculture and food security catalogs from the
// FAOSTAT API. Catalog endpoints are fully supported; the data
// endpoint is intentionally simplified because FAOSTAT data queries
// require SDMX query-building that the bulk download serves better.
type FAOClient struct {
	base *baseClient
}

// NewFAOClient creates a FAOSTAT API client
func NewFAOClient(opts Options) *FAOClient {
	opts = opts.withDefaults(faoBaseURL, faoRateDelay)
	return &FAOClient{base: newBaseClient(opts, "fao")}
}

// Name returns the human-readable provider name
func (c *FAOClient) Name() string {
	return faoSourceName
}

// GetCountries fetches the FAOSTAT area dimension
func (c *FAOClient) GetCountries(ctx context.Context) ([]models.Country, error) {
	body, err := c.base.get(ctx, "/dimensions/area/"+faoDefaultDomain, nil)
	if err != nil {
		return nil, err
	}

	var resp models.FAODimensionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from FAO API: %w", err)
	}

	countries := make([]models.Country, 0, len(resp.Data))
	for _, member := range resp.Data {
		countries = append(countries, models.Country{
			Code: member.Code.String(),
			Name: member.Label,
		})
	}

	c.base.log.Infof("Fetched %d countries from FAO API", len(countries))
	return countries, nil
}

// GetIndicators fetches items of the default domain as indicators,
// coded DOMAIN_item.
func (c *FAOClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	return c.GetDomainIndicators(ctx, faoDefaultDomain)
}

// GetDomainIndicators fetches the item dimension of one FAOSTAT domain
func (c *FAOClient) GetDomainIndicators(ctx context.Context, domain string) ([]models.Indicator, error) {
	body, err := c.base.get(ctx, "/dimensions/item/"+domain, nil)
	if err != nil {
		return nil, err
	}

	var resp models.FAODimensionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from FAO API: %w", err)
	}

	items := resp.Data
	if len(items) > faoItemLimit {
		items = items[:faoItemLimit]
	}

	indicators := make([]models.Indicator, 0, len(items))
	for _, item := range items {
		indicators = append(indicators, models.Indicator{
			Code:        fmt.Sprintf("%s_%s", domain, item.Code.String()),
			Name:        item.Label,
			Description: faoDomains[domain],
		})
	}

	c.base.log.Infof("Fetched %d indicators from FAO API", len(indicators))
	return indicators, nil
}

// GetData is a simplified stub: FAOSTAT data queries need SDMX query
// building that is out of proportion to the catalog integration, so
// this returns an empty result set. Use the bulk download pipeline for
// actual FAO series.
func (c *FAOClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	c.base.log.Warn("FAO GetData is simplified - use bulk download for production series",
		map[string]interface{}{"country": countryCode, "indicator": indicatorCode})
	return []models.Record{}, nil
}
