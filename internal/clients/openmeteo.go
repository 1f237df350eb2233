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
	openMeteoBaseURL    = "https://archive-api.open-meteo.com/v1"
	openMeteoSourceName = "Open-Meteo"
	openMeteoRateDelay  = 100 * time.Millisecond
)

// openMeteoIndicators is the supported daily weather variable
// vocabulary; the archive API has no catalog endpoint.
var openMeteoIndicators = []models.Indicator{
	{Code: "temperature_2m_mean", Name: "Mean Temperature (2m)", Description: "°C"},
	{Code: "temperature_2m_max", Name: "Maximum Temperature (2m)", Description: "°C"},
	{Code: "temperature_2m_min", Name: "Minimum Temperature (2m)", Description: "°C"},
	{Code: "precipitation_sum", Name: "Precipitation Sum", Description: "mm"},
	{Code: "rain_sum", Name: "Rain Sum", Description: "mm"},
	{Code: "snowfall_sum", Name: "Snowfall Sum", Description: "cm"},
	{Code: "windspeed_10m_max", Name: "Maximum Wind Speed (10m)", Description: "km/h"},
}

// OpenMeteoClient fetches historical daily weather from the Open-Meteo
// archive API. Gridded data: country codes are translated to capital
// coordinates via the static lookup table.
type OpenMeteoClient struct {
	base *baseClient
}

// NewOpenMeteoClient creates an Open-Meteo archive API client
func NewOpenMeteoClient(opts Options) *OpenMeteoClient {
	opts = opts.withDefaults(openMeteoBaseURL, openMeteoRateDelay)
	return &OpenMeteoClient{base: newBaseClient(opts, "openmeteo")}
}

// Name returns the human-readable provider name
func (c *OpenMeteoClient) Name() string {
	return openMeteoSourceName
}

// GetCountries lists the countries covered by the capital table
func (c *OpenMeteoClient) GetCountries(ctx context.Context) ([]models.Country, error) {
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

// GetIndicators lists the supported daily weather variables
func (c *OpenMeteoClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	indicators := make([]models.Indicator, len(openMeteoIndicators))
	copy(indicators, openMeteoIndicators)
	return indicators, nil
}

// GetData fetches a daily weather series for a country's capital,
// normalized to one record per day with the full date preserved.
func (c *OpenMeteoClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	coords, ok := countryCapitals[countryCode]
	if !ok {
		return nil, fmt.Errorf("country %s not supported, available: %v", countryCode, supportedCapitalCodes())
	}

	// The archive begins in 1940; default to a single recent year to
	// keep unbounded requests from pulling eight decades of dailies.
	startDate := "2020-01-01"
	endDate := "2020-12-31"
	if startYear != 0 {
		startDate = fmt.Sprintf("%d-01-01", startYear)
	}
	if endYear != 0 {
		endDate = fmt.Sprintf("%d-12-31", endYear)
	}

	body, err := c.base.get(ctx, "/archive", map[string]string{
		"latitude":   strconv.FormatFloat(coords[0], 'f', 4, 64),
		"longitude":  strconv.FormatFloat(coords[1], 'f', 4, 64),
		"start_date": startDate,
		"end_date":   endDate,
		"daily":      indicatorCode,
		"timezone":   "UTC",
	})
	if err != nil {
		return nil, err
	}

	var resp models.OpenMeteoArchiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response format from Open-Meteo API: %w", err)
	}
	if resp.Daily == nil {
		return nil, fmt.Errorf("invalid response format from Open-Meteo API: missing daily block")
	}

	records, err := c.normalize(resp.Daily, countryCode, indicatorCode)
	if err != nil {
		return nil, err
	}

	c.base.log.Infof("Fetched %d weather data points for %s", len(records), countryCode)
	return records, nil
}

// normalize zips the daily time axis with the requested variable's
// value array. Days whose date cannot be parsed are dropped.
func (c *OpenMeteoClient) normalize(daily map[string]json.RawMessage, countryCode, indicatorCode string) ([]models.Record, error) {
	var dates []string
	if raw, ok := daily["time"]; ok {
		if err := json.Unmarshal(raw, &dates); err != nil {
			return nil, fmt.Errorf("invalid daily time axis from Open-Meteo API: %w", err)
		}
	}

	var values []*float64
	if raw, ok := daily[indicatorCode]; ok {
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("invalid daily values from Open-Meteo API: %w", err)
		}
	}

	n := len(dates)
	if len(values) < n {
		n = len(values)
	}

	records := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		// Dates come in YYYY-MM-DD form.
		year, err := strconv.Atoi(firstDateField(dates[i]))
		if err != nil {
			c.base.log.Warnf("Dropping Open-Meteo record with unparseable date %q: %v", dates[i], err)
			continue
		}
		records = append(records, models.Record{
			Country:   countryCode,
			Year:      year,
			Indicator: indicatorCode,
			Value:     values[i],
			Source:    openMeteoSourceName,
			Date:      dates[i],
		})
	}
	return records, nil
}

func firstDateField(date string) string {
	for i := 0; i < len(date); i++ {
		if date[i] == '-' {
			return date[:i]
		}
	}
	return date
}
