package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bonzainsights/WorldInsights/internal/clients"
	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/router"
)

// maxSurfacedErrors bounds how many per-call failures end up in a
// combined error message.
const maxSurfacedErrors = 5

// Source pairs a routing tag with the client that serves it. The slice
// order passed to New is the catalog priority: the first source to
// report a country code owns that country's metadata.
type Source struct {
	Tag    string
	Client clients.SourceClient
}

// Aggregator fans out across registered source clients to build merged
// catalogs and flat datasets. Partial failures are tolerated
// throughout: a call only errors when every contributing client failed
// and nothing was produced.
type Aggregator struct {
	sources     []Source
	byTag       map[string]clients.SourceClient
	router      *router.Router
	concurrency int
	log         *logger.Logger
}

// New creates an aggregator over an explicit, ordered set of sources.
// concurrency caps the number of in-flight provider calls during
// FetchData; 1 degrades to serial fetching.
func New(sources []Source, rt *router.Router, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	byTag := make(map[string]clients.SourceClient, len(sources))
	for _, s := range sources {
		byTag[s.Tag] = s.Client
	}
	return &Aggregator{
		sources:     sources,
		byTag:       byTag,
		router:      rt,
		concurrency: concurrency,
		log:         logger.GetGlobalLogger().WithComponent("aggregator"),
	}
}

// ListIndicators aggregates indicator catalogs from every source, each
// entry tagged with the source it routes to.
func (a *Aggregator) ListIndicators(ctx context.Context) ([]models.Indicator, error) {
	var all []models.Indicator
	var errs []string

	for _, src := range a.sources {
		indicators, err := src.Client.GetIndicators(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Client.Name(), err))
			a.log.Warnf("Failed to fetch %s indicators: %v", src.Client.Name(), err)
			continue
		}
		for i := range indicators {
			indicators[i].Source = src.Tag
		}
		all = append(all, indicators...)
		a.log.Infof("Fetched %d indicators from %s", len(indicators), src.Client.Name())
	}

	if len(all) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch indicators from all sources: %s", strings.Join(errs, "; "))
	}

	a.log.Infof("Aggregated %d indicators from %d sources", len(all), len(a.sources))
	return all, nil
}

// ListCountries aggregates country catalogs from every source,
// deduplicated by code. The first source to report a code wins, so the
// primary provider's metadata (capital, region) sticks. Result is
// sorted by country name.
func (a *Aggregator) ListCountries(ctx context.Context) ([]models.Country, error) {
	var all []models.Country
	seen := make(map[string]bool)
	var errs []string

	for _, src := range a.sources {
		countries, err := src.Client.GetCountries(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Client.Name(), err))
			a.log.Warnf("Failed to fetch %s countries: %v", src.Client.Name(), err)
			continue
		}
		added := 0
		for _, country := range countries {
			if country.Code == "" || seen[country.Code] {
				continue
			}
			country.Source = src.Tag
			all = append(all, country)
			seen[country.Code] = true
			added++
		}
		a.log.Infof("Added %d new countries from %s", added, src.Client.Name())
	}

	if len(all) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch countries from all sources: %s", strings.Join(errs, "; "))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	a.log.Infof("Aggregated %d unique countries", len(all))
	return all, nil
}

// FetchData assembles a flat dataset for every indicator×country pair,
// routing each indicator to its source client. Calls fan out with
// bounded concurrency; failed pairs are recorded but do not abort the
// fetch. An error is returned only when no data was collected and at
// least one call failed.
func (a *Aggregator) FetchData(ctx context.Context, indicators, countries []string, startYear, endYear int) ([]models.Record, error) {
	if len(indicators) == 0 {
		return nil, fmt.Errorf("at least one indicator is required")
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("at least one country is required")
	}

	a.log.Infof("Fetching data for %d indicators, %d countries", len(indicators), len(countries))

	indicatorSources := a.router.ResolveAll(indicators)

	var mu sync.Mutex
	var all []models.Record
	var errs []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, indicator := range indicators {
		tag := indicatorSources[indicator]
		client, ok := a.byTag[tag]
		if !ok {
			a.log.Warnf("No client registered for source %q, skipping indicator %s", tag, indicator)
			continue
		}

		for _, country := range countries {
			indicator, country := indicator, country
			g.Go(func() error {
				fetchRequests.WithLabelValues(tag).Inc()
				records, err := client.GetData(gctx, country, indicator, startYear, endYear)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					fetchFailures.WithLabelValues(tag).Inc()
					errs = append(errs, fmt.Sprintf("%s/%s/%s: %v", tag, indicator, country, err))
					a.log.Warnf("Failed to fetch data: %v", err)
					return nil
				}
				recordsFetched.WithLabelValues(tag).Add(float64(len(records)))
				all = append(all, records...)
				return nil
			})
		}
	}

	// Workers never return errors; failures are collected instead.
	_ = g.Wait()

	if len(all) == 0 && len(errs) > 0 {
		surfaced := errs
		if len(surfaced) > maxSurfacedErrors {
			surfaced = surfaced[:maxSurfacedErrors]
		}
		return nil, fmt.Errorf("failed to fetch any data: %s", strings.Join(surfaced, "; "))
	}

	a.log.Infof("Fetched %d data points (%d failed calls)", len(all), len(errs))
	return all, nil
}
