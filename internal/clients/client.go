package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
)

// Source tags used by the router and the aggregator to address clients.
const (
	SourceWorldBank = "worldbank"
	SourceWHO       = "who"
	SourceFAO       = "fao"
	SourceOpenMeteo = "openmeteo"
	SourceNASA      = "nasa"
)

// SourceClient is the contract every data provider client implements.
// Expected failure modes (timeouts, non-2xx responses, malformed
// payloads, unsupported countries) come back as errors, never panics.
// startYear/endYear of 0 mean "unbounded" on that side.
type SourceClient interface {
	Name() string
	GetCountries(ctx context.Context) ([]models.Country, error)
	GetIndicators(ctx context.Context) ([]models.Indicator, error)
	GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error)
}

// Options configures the shared HTTP behavior of a client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration // default 30s
	MaxRetries int           // default 3
	RetryWait  time.Duration // base wait for exponential backoff, default 500ms
	RateDelay  time.Duration // minimum delay between outbound requests
}

func (o Options) withDefaults(baseURL string, rateDelay time.Duration) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryWait == 0 {
		o.RetryWait = 500 * time.Millisecond
	}
	if o.RateDelay == 0 {
		o.RateDelay = rateDelay
	}
	return o
}

// Retried HTTP status codes; everything else fails immediately.
var retryStatusCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// baseClient wraps resty with retry, backoff, and an inter-request
// delay. The rate limiter clock is the only state a client carries
// between calls; it is private per client, never shared.
type baseClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func newBaseClient(opts Options, component string) *baseClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.MaxRetries)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(16 * opts.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return retryStatusCodes[r.StatusCode()]
	})

	return &baseClient{
		http:    client,
		limiter: rate.NewLimiter(rate.Every(opts.RateDelay), 1),
		log:     logger.GetGlobalLogger().WithComponent(component),
	}
}

// get performs a rate-limited GET against the client's base URL and
// returns the raw body of a 200 response.
func (b *baseClient) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(endpoint)

	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode())
	}

	return resp.Body(), nil
}
