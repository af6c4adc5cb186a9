// Package metrics exposes crawl counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seace-engine/internal/scrape/types"
)

const namespace = "seace"

type Metrics struct {
	CrawlsTotal     *prometheus.CounterVec
	CrawlDuration   prometheus.Histogram
	CrawlsRunning   prometheus.Gauge
	PagesTotal      prometheus.Counter
	NoticesTotal    prometheus.Counter
	SkippedTotal    *prometheus.CounterVec
	StopsTotal      *prometheus.CounterVec
	EnrichmentTotal *prometheus.CounterVec
	RejectedTotal   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the engine metrics on reg. A nil reg gets a private registry,
// which keeps tests independent of each other.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		CrawlsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "crawls_total",
			Help: "Crawls finished, by outcome.",
		}, []string{"status"}),
		CrawlDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "crawl_duration_seconds",
			Help:    "Wall time of a crawl including enrichment.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		}),
		CrawlsRunning: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "crawls_running",
			Help: "Crawls currently holding a rendering session.",
		}),
		PagesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "listing_pages_total",
			Help: "Listing pages read.",
		}),
		NoticesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notices_total",
			Help: "Notices accepted into results.",
		}),
		SkippedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cards_skipped_total",
			Help: "Listing cards not accepted, by reason.",
		}, []string{"reason"}),
		StopsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "crawl_stops_total",
			Help: "Why crawls stopped paginating.",
		}, []string{"reason"}),
		EnrichmentTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "enrichment_total",
			Help: "Detail page lookups, by result.",
		}, []string{"result"}),
		RejectedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "requests_rejected_total",
			Help: "Scrape requests turned away before crawling.",
		}, []string{"reason"}),
		gatherer: reg,
	}
}

// Observe records a finished crawl. err marks it failed; the report is
// counted either way.
func (m *Metrics) Observe(rep types.Report, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.CrawlsTotal.WithLabelValues(status).Inc()
	m.CrawlDuration.Observe(dur.Seconds())
	m.PagesTotal.Add(float64(rep.Pages))
	m.NoticesTotal.Add(float64(rep.Accepted))
	for reason, n := range rep.Skipped {
		m.SkippedTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
	if rep.Stop != "" {
		m.StopsTotal.WithLabelValues(string(rep.Stop)).Inc()
	}
	if e := rep.Enrichment; e != nil {
		m.EnrichmentTotal.WithLabelValues("found").Add(float64(e.Found))
		m.EnrichmentTotal.WithLabelValues("not_found").Add(float64(e.NotFound))
		m.EnrichmentTotal.WithLabelValues("no_link").Add(float64(e.NoLink))
		m.EnrichmentTotal.WithLabelValues("fetch_error").Add(float64(e.FetchErrors))
	}
}

func (m *Metrics) Reject(reason string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
