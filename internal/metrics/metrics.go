package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// latencyBuckets spans a single sun-position lookup (well under a
// millisecond) up to a year-long seasonal calculation that waits on the
// base-exposure service (seconds): 0.5ms, 2ms, 8ms ... 8.2s.
var latencyBuckets = prometheus.ExponentialBuckets(0.0005, 4, 8)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarsim",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   latencyBuckets,
	}, []string{"method", "path"})

	// Exposure metrics
	CalculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarsim",
		Subsystem: "exposure",
		Name:      "calculation_duration_seconds",
		Help:      "Duration of exposure calculations",
		Buckets:   latencyBuckets,
	}, []string{"kind"})

	BaseExposureFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "exposure",
		Name:      "base_exposure_fetches_total",
		Help:      "Base-exposure lookups by outcome",
	}, []string{"outcome"})

	SeasonalDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "solarsim",
		Subsystem: "exposure",
		Name:      "seasonal_days",
		Help:      "Days covered by each seasonal calculation",
		Buckets:   []float64{1, 7, 30, 91, 183, 366},
	})

	BaseExposureFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "exposure",
		Name:      "base_exposure_fallbacks_total",
		Help:      "Days computed without terrain and building shading",
	})

	PlotRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "scheduler",
		Name:      "plot_refreshes_total",
		Help:      "Scheduled plot refreshes by outcome",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsim",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the Prometheus registry.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
