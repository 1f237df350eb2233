package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

const (
	worldBankBaseURL    = "https://api.worldbank.org/v2"
	worldBankSourceName = "World Bank"
	worldBankRateDelay  = 100 * time.Millisecond
	worldBankPageSize   = 1000
)

// WorldBankClient fetches development indicators from the World Bank
// open data API. No authentication; data from 1960 onward for 200+
// countries and regions.
type WorldBankClient struct {
	base *baseClient
}

// NewWorldBankClient creates a World Bank API client
func NewWorldBankClient(opts Options) *WorldBankClient {
	opts = opts.withDefaults(worldBankBaseURL, worldBankRateDelay)
	return &WorldBankClient{base: newBaseClient(opts, "worldbank")}
}

// Name returns the human-readable provider name
func (c *WorldBankClient) Name() string {
	return worldBankSourceName
}

// GetCountries fetches the country catalog
func (c *WorldBankClient) GetCountries(ctx context.Context) ([]models.Country, error) {
	body, err := c.base.get(ctx, "/country", map[string]string{
		"format":   "json",
		"per_page": "300",
	})
	if err != nil {
		return nil, err
	}

	var raw []models.WorldBankCountry
	if err := decodeWorldBankEnvelope(body, &raw); err != nil {
		return nil, err
	}

	countries := make([]models.Country, 0, len(raw))
	for _, wc := range raw {
		countries = append(countries, models.Country{
			Code:        wc.ID,
			Name:        wc.Name,
			Capital:     wc.CapitalCity,
			Region:      wc.Region.Value,
			IncomeLevel: wc.IncomeLevel.Value,
		})
	}

	c.base.log.Infof("Fetched %d countries from World Bank API", len(countries))
	return countries, nil
}

// GetIndicators fetches the first page of the indicator catalog. The
// full catalog has 16,000+ entries; one page keeps the aggregate
// listing responsive.
func (c *WorldBankClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	body, err := c.base.get(ctx, "/indicator", map[string]string{
		"format":   "json",
		"per_page": "100",
	})
	if err != nil {
		return nil, err
	}

	var raw []models.WorldBankIndicator
	if err := decodeWorldBankEnvelope(body, &raw); err != nil {
		return nil, err
	}

	indicators := make([]models.Indicator, 0, len(raw))
	for _, wi := range raw {
		indicators = append(indicators, models.Indicator{
			Code:        wi.ID,
			Name:        wi.Name,
			Description: wi.SourceNote,
		})
	}

	c.base.log.Infof("Fetched %d indicators from World Bank API", len(indicators))
	return indicators, nil
}

// GetData fetches one country/indicator series, normalized
func (c *WorldBankClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	params := map[string]string{
		"format":   "json",
		"per_page": strconv.Itoa(worldBankPageSize),
	}
	if dateRange := worldBankDateRange(startYear, endYear); dateRange != "" {
		params["date"] = dateRange
	}

	endpoint := fmt.Sprintf("/country/%s/indicator/%s", countryCode, indicatorCode)
	body, err := c.base.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var raw []models.WorldBankObservation
	if err := decodeWorldBankEnvelope(body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		c.base.log.Warnf("No data found for %s - %s", countryCode, indicatorCode)
		return []models.Record{}, nil
	}

	records := c.normalize(raw)
	c.base.log.Infof("Fetched %d data points for %s - %s", len(records), countryCode, indicatorCode)
	return records, nil
}

func (c *WorldBankClient) normalize(raw []models.WorldBankObservation) []models.Record {
	records := make([]models.Record, 0, len(raw))
	for _, obs := range raw {
		country := obs.CountryISO3Code
		if country == "" {
			country = obs.Country.ID
		}

		year, err := strconv.Atoi(obs.Date)
		if err != nil {
			c.base.log.Warnf("Dropping World Bank record with unparseable date %q: %v", obs.Date, err)
			continue
		}

		records = append(records, models.Record{
			Country:   country,
			Year:      year,
			Indicator: obs.Indicator.ID,
			Value:     obs.Value,
			Source:    worldBankSourceName,
		})
	}
	return records
}

// worldBankDateRange builds the API's "start:end" date filter. A
// single bound is widened to a 50 year window, matching the widest
// span most series cover.
func worldBankDateRange(startYear, endYear int) string {
	switch {
	case startYear != 0 && endYear != 0:
		return fmt.Sprintf("%d:%d", startYear, endYear)
	case startYear != 0:
		return fmt.Sprintf("%d:%d", startYear, startYear+50)
	case endYear != 0:
		return fmt.Sprintf("%d:%d", endYear-50, endYear)
	default:
		return ""
	}
}

// decodeWorldBankEnvelope unwraps the [pagination, payload] array the
// World Bank API returns and decodes the payload element into dst.
func decodeWorldBankEnvelope(body []byte, dst interface{}) error {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse World Bank response: %w", err)
	}
	if len(envelope) < 2 {
		return fmt.Errorf("invalid response format from World Bank API")
	}
	if string(envelope[1]) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope[1], dst); err != nil {
		return fmt.Errorf("failed to parse World Bank payload: %w", err)
	}
	return nil
}
