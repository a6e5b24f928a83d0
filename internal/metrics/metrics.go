// Package metrics exposes Prometheus counters for the site.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "valentine"

// Metrics holds the site's collectors. A nil *Metrics is valid and records
// nothing, which keeps services usable without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	boxesOpened         prometheus.Counter
	gamesWon            prometheus.Counter
	highscoresSubmitted prometheus.Counter
	feedback            *prometheus.CounterVec
	fallbacks           *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		boxesOpened: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxes_opened_total",
			Help:      "Reason boxes opened for the first time.",
		}),
		gamesWon: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_won_total",
			Help:      "Memory games completed.",
		}),
		highscoresSubmitted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highscores_submitted_total",
			Help:      "Highscores stored.",
		}),
		feedback: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "Feedback answers by value.",
		}, []string{"answer"}),
		fallbacks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_fallbacks_total",
			Help:      "Content requests answered with a fallback after a backend failure.",
		}, []string{"source"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) BoxOpened() {
	if m != nil {
		m.boxesOpened.Inc()
	}
}

func (m *Metrics) GameWon() {
	if m != nil {
		m.gamesWon.Inc()
	}
}

func (m *Metrics) HighscoreSubmitted() {
	if m != nil {
		m.highscoresSubmitted.Inc()
	}
}

func (m *Metrics) Feedback(answer string) {
	if m != nil {
		m.feedback.WithLabelValues(answer).Inc()
	}
}

// Fallback records a degraded response for source ("reason_count",
// "reason", "gallery", "highscores").
func (m *Metrics) Fallback(source string) {
	if m != nil {
		m.fallbacks.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Gatherer exposes the registry for scraping and tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
