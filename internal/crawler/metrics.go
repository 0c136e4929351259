package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks every HTTP request dispatched, probes included.
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_requests_total",
		Help: "The total number of HTTP requests sent.",
	})
	// retriesTotal tracks fetch attempts that were retried.
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_retries_total",
		Help: "The total number of retried fetch attempts.",
	})
	// requestErrorsTotal tracks fetches that failed after exhausting retries.
	requestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_request_errors_total",
		Help: "The total number of fetches that failed permanently.",
	})
	// pagesTotal tracks terminal page outcomes by label.
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_pages_total",
		Help: "The total number of pages finalized, by outcome.",
	}, []string{"outcome"})
	// linksDiscoveredTotal tracks links admitted to the frontier.
	linksDiscoveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_discovered_total",
		Help: "The total number of links admitted to the frontier.",
	})
)
