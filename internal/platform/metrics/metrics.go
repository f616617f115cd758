// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests cuenta requests por método, patrón de ruta y status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patitas_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration mide la latencia por método y patrón de ruta.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "patitas_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SightingsCreated cuenta reportes de avistamiento por tipo de reportante.
	SightingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patitas_sightings_created_total",
		Help: "Total number of sighting reports by reporter kind",
	}, []string{"reporter"})

	// LostDogsCreated cuenta registros de perros perdidos.
	LostDogsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "patitas_lost_dogs_created_total",
		Help: "Total number of lost dog registrations",
	})

	// LostDogsFound cuenta registros marcados como encontrados.
	LostDogsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "patitas_lost_dogs_found_total",
		Help: "Total number of lost dog registrations marked as found",
	})

	// PhotosStored cuenta blobs escritos por prefijo (lost_dogs, shelters).
	PhotosStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patitas_photos_stored_total",
		Help: "Total number of images written to media storage",
	}, []string{"prefix"})

	// Accounts cuenta cuentas creadas por tipo de perfil.
	Accounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patitas_accounts_registered_total",
		Help: "Total number of registered accounts by profile kind",
	}, []string{"kind"})
)

// Handler sirve /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware registra HTTPRequests y HTTPDuration usando el patrón de chi
// (no la URL cruda) para no explotar la cardinalidad.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
