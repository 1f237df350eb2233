package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

const (
	nasaBaseURL    = "https://power.larc.nasa.gov/api/temporal/daily"
	nasaSourceName = "NASA POWER"
	nasaRateDelay  = 100 * time.Millisecond
	nasaDemoKey    = "DEMO_KEY"

	// The POWER API reports missing observations as -999.
	nasaMissingSentinel = -999.0
)

// nasaParameters is the supported POWER parameter vocabulary.
var nasaParameters = map[string]string{
	"T2M":               "Temperature at 2 Meters",
	"T2M_MAX":           "Maximum Temperature at 2 Meters",
	"T2M_MIN":           "Minimum Temperature at 2 Meters",
	"PRECTOTCORR":       "Precipitation Corrected",
	"WS2M":              "Wind Speed at 2 Meters",
	"RH2M":              "Relative Humidity at 2 Meters",
	"ALLSKY_SFC_SW_DWN": "All Sky Surface Shortwave Downward Irradiance",
}

// NASAPowerClient fetches solar and meteorological series from NASA's
// POWER API. Gridded data addressed by capital coordinates, like
// Open-Meteo. A free API key is recommended; DEMO_KEY works with
// tight quotas.
type NASAPowerClient struct {
	base   *baseClient
	apiKey string
}

// NewNASAPowerClient creates a NASA POWER API client
func NewNASAPowerClient(opts Options, apiKey string) *NASAPowerClient {
	opts = opts.withDefaults(nasaBaseURL, nasaRateDelay)
	if apiKey == "" {
		apiKey = nasaDemoKey
	}
	return &NASAPowerClient{
		base:   newBaseClient(opts, "nasa"),
		apiKey: apiKey,
	}
}

// Name returns the human-readable provider name
func (c *NASAPowerClient) Name() string {
	return nasaSourceName
}

// GetCountries lists the countries covered by the capital table
func (c *NASAPowerClient) GetCountries(ctx context.Context) ([]models.Country, error) {
	codes := supportedCapitalCodes()
	countries := make([]models.Country, 0, len(codes))
	for _, code := range codes {
		coords := countryCapitals[code]
		countries = append(countries, models.Country{
			Code:      code,
			Name:      code,
			Latitude:  coords[0],
			Longitude: coords[1],
		})
	}
	return countries, nil
}

// GetIndicators lists the supported POWER parameters
func (c *NASAPowerClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	codes := make([]string, 0, len(nasaParameters))
	for code := range nasaParameters {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	indicators := make([]models.Indicator, 0, len(codes))
	for _, code := range codes {
		indicators = append(indicators, models.Indicator{
			Code:        code,
			Name:        nasaParameters[code],
			Description: nasaParameters[code],
		})
	}
	return indicators, nil
}

// GetData fetches a daily parameter series for a country's capital.
// The -999 missing sentinel is masked to a nil value so it never
// reaches callers.
func (c *NASAPowerClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	coords, ok := countryCapitals[countryCode]
	if !ok {
		return nil, fmt.Errorf("country %s not supported, available: %v", countryCode, supportedCapitalCodes())
	}

	start := "20200101"
	end := "20201231"
	if startYear != 0 {
		start = fmt.Sprintf("%d0101", startYear)
	}
	if endYear != 0 {
		end = fmt.Sprintf("%d1231", endYear)
	}

	body, err := c.base.get(ctx, "/point", map[string]string{
		"parameters": indicatorCode,
		"community":  "RE",
		"latitude":   strconv.FormatFloat(coords[0], 'f', 4, 64),
		"longitude":  strconv.FormatFloat(coords[1], 'f', 4, 64),
		"start":      start,
		"end":        end,
		"format":     "JSON",
		"api_key":    c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var resp models.NASAPowerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from NASA POWER API: %w", err)
	}
	if resp.Properties.Parameter == nil {
		return nil, fmt.Errorf("invalid response format from NASA POWER API: missing parameter block")
	}

	records := c.normalize(resp.Properties.Parameter[indicatorCode], countryCode, indicatorCode)
	c.base.log.Infof("Fetched %d climate data points for %s", len(records), countryCode)
	return records, nil
}

// normalize converts the {YYYYMMDD: value} series to records in date
// order. Sentinel values become nil; unparseable dates drop the record.
func (c *NASAPowerClient) normalize(series map[string]float64, countryCode, indicatorCode string) []models.Record {
	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	records := make([]models.Record, 0, len(dates))
	for _, date := range dates {
		if len(date) < 4 {
			c.base.log.Warnf("Dropping NASA POWER record with unparseable date %q", date)
			continue
		}
		year, err := strconv.Atoi(date[:4])
		if err != nil {
			c.base.log.Warnf("Dropping NASA POWER record with unparseable date %q: %v", date, err)
			continue
		}

		var value *float64
		if v := series[date]; v != nasaMissingSentinel {
			value = models.Float64(v)
		}

		records = append(records, models.Record{
			Country:   countryCode,
			Year:      year,
			Indicator: indicatorCode,
			Value:     value,
			Source:    nasaSourceName,
			Date:      date,
		})
	}
	return records
}
