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

// Prometheus metrics
var (
	NumbersGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "randint_numbers_generated_total",
			Help: "Total number of random integers inserted into notes",
		},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randint_commands_total",
			Help: "Plugin command executions by command and outcome",
		},
		[]string{"command", "status"},
	)

	SettingsSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randint_settings_saves_total",
			Help: "Settings persisted, by what triggered the save",
		},
		[]string{"source"},
	)

	SettingsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randint_settings_recovered_total",
			Help: "Settings form edits whose input could not be parsed and was replaced",
		},
		[]string{"field"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "randint_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request durations labelled with the matched chi route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
