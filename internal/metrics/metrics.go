// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the process metrics. Created once at startup and shared by
// the HTTP middleware and the auth handlers.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       prometheus.Histogram
	registrations prometheus.Counter
	logins        prometheus.Counter
	authFailures  prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounthub_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accounthub_request_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounthub_registrations_total",
			Help: "Successful account registrations.",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounthub_logins_total",
			Help: "Successful logins.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounthub_auth_failures_total",
			Help: "Failed credential or token checks.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.registrations,
		c.logins,
		c.authFailures,
	)

	return c
}

func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.latency.Observe(duration.Seconds())
}

func (c *Collector) RecordRegistration() { c.registrations.Inc() }
func (c *Collector) RecordLogin()        { c.logins.Inc() }
func (c *Collector) RecordAuthFailure()  { c.authFailures.Inc() }

// Handler returns the scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
