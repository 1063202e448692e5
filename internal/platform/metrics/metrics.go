package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores de la API. Cada instancia tiene su propio
// registry, así los tests pueden crear varios routers sin pisarse.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	incidentEvents *prometheus.CounterVec

	incidentsTotal  prometheus.Gauge
	incidentsWindow *prometheus.GaugeVec
	incidentsStatus *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "Current number of HTTP requests being processed",
		}),
		incidentEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incident_events_total",
				Help: "Incident lifecycle events by type",
			},
			[]string{"type"},
		),
		incidentsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "incidents_total",
			Help: "Incidents stored, as of the last stats snapshot",
		}),
		incidentsWindow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "incidents_recent",
				Help: "Incidents created within the window, as of the last stats snapshot",
			},
			[]string{"window"},
		),
		incidentsStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "incidents_by_status",
				Help: "Incidents per moderation status, as of the last stats snapshot",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.incidentEvents,
		m.incidentsTotal,
		m.incidentsWindow,
		m.incidentsStatus,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware mide cada request. La etiqueta route es el patrón de chi
// (/incidents/{id}) para no explotar la cardinalidad con ids.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := strconv.Itoa(status)

		m.requestsTotal.WithLabelValues(r.Method, route, code).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) IncEvent(eventType string) {
	m.incidentEvents.WithLabelValues(eventType).Inc()
}

// Snapshot es lo que publica el job de stats.
type Snapshot struct {
	Total      int
	Last7Days  int
	Last30Days int
	ByStatus   map[string]int
}

func (m *Metrics) SetSnapshot(s Snapshot) {
	m.incidentsTotal.Set(float64(s.Total))
	m.incidentsWindow.WithLabelValues("7d").Set(float64(s.Last7Days))
	m.incidentsWindow.WithLabelValues("30d").Set(float64(s.Last30Days))
	for status, n := range s.ByStatus {
		m.incidentsStatus.WithLabelValues(status).Set(float64(n))
	}
}
