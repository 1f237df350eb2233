package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinsights_fetch_requests_total",
		Help: "Number of data fetch calls issued to source clients.",
	}, []string{"source"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinsights_fetch_failures_total",
		Help: "Number of data fetch calls that returned an error.",
	}, []string{"source"})

	recordsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinsights_records_fetched_total",
		Help: "Number of normalized records returned by source clients.",
	}, []string{"source"})
)
